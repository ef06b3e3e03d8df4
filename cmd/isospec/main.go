// Command isospec resolves an isolation specification against a system
// description and writes the resulting domain configuration.
//
// Usage:
//
//	isospec --sdt system.yaml [flags] <isolation-spec> [output]
//
// The output path defaults to domains.yaml. Fatal problems (unreadable
// spec, a subsystem without access rules, unresolvable default settings)
// exit non-zero; recoverable problems are logged as warnings and the run
// continues.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/madhavamd/lopper/internal/codec"
	"github.com/madhavamd/lopper/internal/config"
	"github.com/madhavamd/lopper/internal/isospec"
	"github.com/madhavamd/lopper/internal/logging"
	"github.com/madhavamd/lopper/internal/repository/sqlite"
	"github.com/madhavamd/lopper/internal/tree"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "isospec: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("isospec", flag.ContinueOnError)
	verbose := flags.CountP("verbose", "v", "increase verbosity (repeatable)")
	sdtPath := flags.String("sdt", "", "system description file (required)")
	output := flags.StringP("output", "o", "", "output file (default domains.yaml)")
	dbPath := flags.String("db", "", "record the run in this history database")
	cfgPath := flags.String("config", "", "config file (default: search standard locations)")

	if err := flags.Parse(args); err != nil {
		return err
	}

	positional := flags.Args()
	if len(positional) < 1 {
		return fmt.Errorf("no isolation specification passed")
	}
	specPath := positional[0]

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, _, err = config.LoadFromPath(*cfgPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return err
	}

	outputPath := cfg.Output
	if len(positional) > 1 {
		outputPath = positional[1]
	}
	if *output != "" {
		outputPath = *output
	}

	verbosity := cfg.Verbosity
	if *verbose > 0 {
		verbosity = *verbose
	}
	log := logging.New(verbosity)

	if *sdtPath == "" {
		return fmt.Errorf("no system description passed (--sdt)")
	}

	cpuMap, err := cfg.CPUMappings()
	if err != nil {
		return err
	}
	memoryMap, err := cfg.MemoryMappings()
	if err != nil {
		return err
	}

	specTree, err := codec.LoadFile(specPath)
	if err != nil {
		return fmt.Errorf("isolation spec: %w", err)
	}
	sdtTree, err := codec.LoadFile(*sdtPath)
	if err != nil {
		return fmt.Errorf("system description: %w", err)
	}

	resolver := &isospec.Resolver{
		Spec:      specTree,
		SDT:       sdtTree,
		Log:       log,
		CPUMap:    cpuMap,
		MemoryMap: memoryMap,
	}

	started := time.Now()
	domains, runErr := resolver.Run()

	historyPath := *dbPath
	if historyPath == "" {
		historyPath = cfg.Database.Path
	}
	if historyPath != "" {
		if err := recordRun(historyPath, specPath, *sdtPath, outputPath,
			started, resolver, domains, runErr); err != nil {
			log.Info("warning: could not record run history", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	log.V(logging.Info).Info("writing domain file", "path", outputPath)
	return codec.WriteFile(domains, outputPath, true)
}

// recordRun persists one resolution pass, successful or not
func recordRun(dbPath, specPath, sdtPath, outputPath string, started time.Time,
	resolver *isospec.Resolver, domains *tree.Tree, runErr error) error {

	repo, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	run := &sqlite.Run{
		SpecPath:   specPath,
		SDTPath:    sdtPath,
		OutputPath: outputPath,
		Status:     "ok",
		StartedAt:  started,
		FinishedAt: time.Now(),
		Warnings:   resolver.Warnings(),
	}
	if runErr != nil {
		run.Status = fmt.Sprintf("error: %v", runErr)
	}
	if domains != nil {
		run.Domains = domainRecords(domains)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return repo.SaveRun(ctx, run)
}

// domainRecords flattens a domain tree into persistable rows
func domainRecords(domains *tree.Tree) []sqlite.DomainRecord {
	root, ok := domains.NodeAt("/domains")
	if !ok {
		return nil
	}

	var out []sqlite.DomainRecord
	for _, n := range root.Children() {
		rec := sqlite.DomainRecord{Name: n.Name()}
		if p, ok := n.Property("id"); ok {
			rec.SubsystemID, _ = p.Int()
		}
		if p, ok := n.Property("cpus"); ok {
			rec.CPUs, _ = p.String()
		}
		if p, ok := n.Property("access"); ok {
			rec.Access, _ = p.String()
		}
		if p, ok := n.Property("memory"); ok {
			rec.Memory, _ = p.String()
		}
		if p, ok := n.Property("sram"); ok {
			rec.SRAM, _ = p.String()
		}
		out = append(out, rec)
	}
	return out
}
