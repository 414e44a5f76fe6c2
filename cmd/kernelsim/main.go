// kernelsim drives the kernel simulator from the command line.
//
// Usage:
//
//	kernelsim [options]
//
// Options:
//
//	-config URL    YAML configuration
//	-scenario URL  replay a scenario and exit
//	-v             print every kernel change and the counters of each command
//	-diff          print a diff of the kernel state after each command
//
// Without -scenario commands are read from stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/viant/kernelsim"
	"github.com/viant/kernelsim/service/event"
)

func main() {
	configURL := flag.String("config", "", "configuration URL")
	scenarioURL := flag.String("scenario", "", "scenario URL; runs in batch mode")
	verbose := flag.Bool("v", false, "print every kernel change")
	diff := flag.Bool("diff", false, "print state diff after each command")
	flag.Parse()

	ctx := context.Background()
	config := kernelsim.DefaultConfig()
	if *configURL != "" {
		var err error
		if config, err = kernelsim.LoadConfig(ctx, *configURL); err != nil {
			log.Fatalf("kernelsim: %v", err)
		}
	}
	var options []kernelsim.Option
	if *verbose {
		options = append(options, kernelsim.WithListener(kernelsim.StdoutListener))
	}
	srv, err := kernelsim.NewFromConfig(config, options...)
	if err != nil {
		log.Fatalf("kernelsim: %v", err)
	}
	defer srv.Close()
	if events := srv.Events(); events != nil {
		events.SetListener(func(e *event.Event[any]) error {
			log.Printf("event %v %v pid=%d: %+v", e.Context.EventType, e.Context.Operation, e.Context.PID, e.Data)
			return nil
		})
	}

	if *scenarioURL != "" {
		os.Exit(runScenario(ctx, srv, *scenarioURL))
	}
	shell := newShell(srv.Runtime(), os.Stdin, os.Stdout)
	shell.diff = *diff
	shell.stats = *verbose
	if err = shell.Run(ctx); err != nil {
		log.Fatalf("kernelsim: %v", err)
	}
}

func runScenario(ctx context.Context, srv *kernelsim.Service, URL string) int {
	aScenario, err := srv.LoadScenario(ctx, URL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kernelsim: %v\n", err)
		return 1
	}
	results, err := srv.RunScenario(ctx, aScenario)
	for i, result := range results {
		status := "ok"
		if !result.Passed() {
			status = "FAIL"
		}
		fmt.Printf("%3d %-4s %v\n", i+1, status, result.Step)
		for _, failure := range result.Failures {
			fmt.Printf("         %v\n", failure)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kernelsim: %v\n", err)
		return 1
	}
	return 0
}
