package main

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (missing API key, invalid paths, store not found)
	ExitDataError     = 3 // Data error (source PDF missing, Ollama not available)
	ExitModelNotFound = 4 // Embedding model not found
)
