// Package tdworkflow is a Go client for the Treasure Workflow REST API, the
// digdag-compatible workflow service of Treasure Data.
//
// A [Client] exposes one method per API endpoint and maps responses onto
// typed records:
//
//   - [Project], [Revision] and project secrets
//   - [Workflow]
//   - [Schedule] and [ScheduleAttempt]
//   - [Session], [Attempt] and [Task]
//   - [LogFile]
//
// # Quick Start
//
//	client, err := tdworkflow.NewClient(os.Getenv("TD_API_KEY"),
//	    tdworkflow.WithSite("us"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	projects, err := client.Projects(ctx, "pandas-df")
//
// # Errors
//
// Failed calls return an [*HTTPError] carrying the status code and the
// server message, which matches [ErrNotFound] and friends with errors.Is.
// Response bodies that do not have the expected shape, and parameters
// rejected before a request is sent, return a [*ValidationError].
//
// Every call is a single request. The client never retries; cancellation
// and deadlines come from the context.
package tdworkflow
