package tdworkflow

import (
	"context"
	"net/url"
	"sort"
)

// SetSecrets stores each key/value pair as a project secret, one request
// per key in sorted key order. It stops at the first failure.
func (c *Client) SetSecrets(ctx context.Context, projectID int64, secrets map[string]string) (bool, error) {
	if err := validateID("SetSecrets", "projectID", projectID); err != nil {
		return false, err
	}
	if len(secrets) == 0 {
		return false, invalid("SetSecrets", "secrets", "must not be empty")
	}
	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		if err := validateName("SetSecrets", "key", k); err != nil {
			return false, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		body := struct {
			Value string `json:"value"`
		}{Value: secrets[k]}
		if err := c.transport.put(ctx, secretPath(projectID, k), body, nil); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Secrets returns the names of a project's secrets. Secret values are
// never returned by the service.
func (c *Client) Secrets(ctx context.Context, projectID int64) ([]string, error) {
	if err := validateID("Secrets", "projectID", projectID); err != nil {
		return nil, err
	}
	var resp struct {
		Secrets []struct {
			Key string `json:"key"`
		} `json:"secrets"`
	}
	if err := c.transport.get(ctx, projectPath(projectID)+"/secrets", nil, &resp); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(resp.Secrets))
	for _, s := range resp.Secrets {
		keys = append(keys, s.Key)
	}
	return keys, nil
}

// DeleteSecret removes one project secret. It returns true when the server
// acknowledges the deletion.
func (c *Client) DeleteSecret(ctx context.Context, projectID int64, key string) (bool, error) {
	if err := validateID("DeleteSecret", "projectID", projectID); err != nil {
		return false, err
	}
	if err := validateName("DeleteSecret", "key", key); err != nil {
		return false, err
	}
	return c.transport.delete(ctx, secretPath(projectID, key))
}

func secretPath(projectID int64, key string) string {
	return projectPath(projectID) + "/secrets/" + url.PathEscape(key)
}
