package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/umputun/watchscope/pkg/config"
)

// generates the JSON schema embedded by pkg/config for startup verification,
// run after any Config change: go run ./cmd/schema pkg/config/schema.json
func main() {
	outputPath := "schema.json"
	if len(os.Args) > 1 {
		if os.Args[1] == "-h" || os.Args[1] == "--help" {
			fmt.Println("usage: schema [output-file]")
			return
		}
		outputPath = os.Args[1]
	}

	schema := jsonschema.Reflect(&config.Config{})
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("can't marshal watchscope config schema: %v", err)
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		log.Fatalf("can't write %s: %v", outputPath, err)
	}

	fmt.Printf("watchscope config schema written to %s\n", outputPath)
}
