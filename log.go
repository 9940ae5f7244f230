package tdworkflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// LogFile describes a compressed log artifact written by a task of an
// attempt.
type LogFile struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	TaskName string `json:"taskName,omitempty"`
	FileTime string `json:"fileTime,omitempty"`
	AgentID  string `json:"agentId,omitempty"`

	// Direct is a pre-signed download URL, present when the server
	// supports direct download.
	Direct string `json:"direct,omitempty"`
}

type logFileJSON LogFile

// UnmarshalJSON implements json.Unmarshaler.
func (l *LogFile) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		FileName *string `json:"fileName"`
		logFileJSON
	}
	if err := decodeRecord("LogFile", data, &raw); err != nil {
		return err
	}
	if raw.FileName == nil || *raw.FileName == "" {
		return invalid("LogFile", "fileName", "is required")
	}
	*l = LogFile(raw.logFileJSON)
	l.FileName = *raw.FileName
	return nil
}

// LogFilesOptions filters LogFiles.
type LogFilesOptions struct {
	// Task restricts the listing to one task's full name, e.g. "+main+load".
	Task string

	// DirectDownload asks the server to include direct download URLs.
	DirectDownload *bool
}

// LogFiles lists the log files of an attempt.
func (c *Client) LogFiles(ctx context.Context, attemptID int64, opts LogFilesOptions) ([]LogFile, error) {
	if err := validateID("LogFiles", "attemptID", attemptID); err != nil {
		return nil, err
	}
	q := url.Values{}
	if opts.Task != "" {
		q.Set("task", opts.Task)
	}
	if opts.DirectDownload != nil {
		q.Set("direct_download", strconv.FormatBool(*opts.DirectDownload))
	}
	var resp struct {
		Files []LogFile `json:"files"`
	}
	if err := c.transport.get(ctx, logFilesPath(attemptID), q, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// LogFile downloads one log file of an attempt and returns its
// decompressed text.
func (c *Client) LogFile(ctx context.Context, attemptID int64, fileName string) (string, error) {
	if err := validateID("LogFile", "attemptID", attemptID); err != nil {
		return "", err
	}
	if err := validateName("LogFile", "fileName", fileName); err != nil {
		return "", err
	}
	body, err := c.transport.getRaw(ctx, logFilesPath(attemptID)+"/"+url.PathEscape(fileName))
	if err != nil {
		return "", err
	}
	text, err := gunzip(body)
	if err != nil {
		return "", fmt.Errorf("tdworkflow: decompress log file %s: %w", fileName, err)
	}
	return text, nil
}

// gunzip decompresses a gzip body. Bodies that do not start with the gzip
// magic number were already decoded on the way and are returned as is.
func gunzip(body []byte) (string, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return string(body), nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func logFilesPath(attemptID int64) string {
	return fmt.Sprintf("attempts/%d/log/files", attemptID)
}
