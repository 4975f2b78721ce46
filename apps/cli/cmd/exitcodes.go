package cmd

// Exit codes for the mlconsole CLI
const (
	// ExitSuccess indicates the request completed
	ExitSuccess = 0

	// ExitRequestFailure indicates the request failed or, with --fail,
	// returned a non-2xx status
	ExitRequestFailure = 1

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitSchemaFailure indicates the response failed schema validation
	ExitSchemaFailure = 4
)
