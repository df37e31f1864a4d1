// Command chatrelay is a streaming chat gateway that fans requests out over
// several free-tier LLM providers with failover.
//
// Usage:
//
//	# Start the gateway (same as "chatrelay serve")
//	chatrelay
//
//	# Start on another port with a custom config file
//	chatrelay serve --port 8080 --config ./config.toml
//
//	# Generate a key for MASTER_API_KEY
//	chatrelay keygen
package main

import (
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	Execute()
}
