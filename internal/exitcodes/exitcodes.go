package exitcodes

// Exit codes for the devtask CLI
// These codes form the operational contract with CI/CD and operators.
// External tool failures are NOT translated: when a task's underlying tool
// exits non-zero, devtask exits with that same code.
const (
	Success       = 0 // Successful execution
	InvalidConfig = 2 // Configuration file invalid, or usage error
	UnknownTask   = 3 // Requested task name is not registered
	RuntimeError  = 4 // Runtime error during execution
)
