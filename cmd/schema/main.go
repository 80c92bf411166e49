package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsdesk/pkg/config"
)

type options struct {
	Check bool `long:"check" description:"fail if the existing schema file is out of date instead of writing it"`
	Args  struct {
		Output string `positional-arg-name:"output" default:"schema.json"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := generate(opts.Args.Output, opts.Check); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

// generate writes the config schema to path, or compares it with path in check mode
func generate(path string, check bool) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	data = append(data, '\n')

	if check {
		existing, err := os.ReadFile(path) //nolint:gosec // path comes from command line
		if err != nil {
			return fmt.Errorf("read schema file: %w", err)
		}
		if !bytes.Equal(bytes.TrimSpace(existing), bytes.TrimSpace(data)) {
			return fmt.Errorf("schema %s is out of date, run go generate ./pkg/config", path)
		}
		fmt.Printf("Schema %s is up to date\n", path)
		return nil
	}

	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		return fmt.Errorf("write schema file: %w", err)
	}
	fmt.Printf("Schema generated successfully at %s\n", path)
	return nil
}
