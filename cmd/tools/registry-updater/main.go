// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"attrition-workers/pkg/registry"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", "configs/activity-registry.json", "Path to registry file")
		id := fs.String("id", "", "Activity ID (e.g., parse-attrition-insight)")
		displayName := fs.String("displayName", "", "Display Name")
		description := fs.String("description", "", "Description")
		category := fs.String("category", "", "Category (e.g., insight)")
		taskType := fs.String("taskType", "", "Camunda Task Type")
		version := fs.String("version", "1.0.0", "Version")
		status := fs.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *displayName == "" || *category == "" || *taskType == "" {
			return errors.New("id, displayName, category and taskType are required for add")
		}

		reg, err := loadOrCreate(*path)
		if err != nil {
			return err
		}
		err = reg.Add(registry.Activity{
			ID:                   *id,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *status,
			InputSchema:          map[string]interface{}{"type": "object"},
			OutputSchema:         map[string]interface{}{"type": "object"},
			ErrorCodes:           []string{},
			Timeout:              "10s",
			Workflows:            []string{},
			Tags:                 []string{},
		})
		if err != nil {
			return err
		}
		if err := registry.Save(reg, *path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added activity: %s\n", *id)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", "configs/activity-registry.json", "Path to registry file")
		id := fs.String("id", "", "Activity ID to update")
		field := fs.String("field", "", "Field to update (status, version, timeout, retries, ...)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *field == "" || *value == "" {
			return errors.New("id, field and value are required for update")
		}

		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.UpdateField(*id, *field, *value); err != nil {
			return err
		}
		if err := registry.Save(reg, *path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *id, *field, *value)

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", "configs/activity-registry.json", "Path to registry file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Validate(); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(out, "Registry validation passed (%d activities).\n", len(reg.Activities))

	default:
		help(out)
	}
	return nil
}

func loadOrCreate(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return &registry.ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities:  []registry.Activity{},
	}, nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Registry Updater Tool")
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  registry-updater add -id=<id> -displayName=<name> -category=<cat> -taskType=<type> [-description=<desc>] [-path=<file>]")
	fmt.Fprintln(out, "  registry-updater update -id=<id> -field=<field> -value=<value> [-path=<file>]")
	fmt.Fprintln(out, "  registry-updater validate [-path=<file>]")
}
