package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"devtask/internal/exitcodes"
	"devtask/internal/history"
)

func main() {
	dbPath := flag.String("db", filepath.Join(".devtask", "history.db"), "Path to run-history database")
	recent := flag.Int("recent", 0, "Show N most recent task runs")
	taskName := flag.String("task", "", "Filter runs by task name")
	status := flag.String("status", "", "Filter runs by status (OK, FAIL, ERROR, DRY_RUN)")
	removals := flag.Int("removals", 0, "Show N most recent removal attempts")
	run := flag.String("run", "", "Show removal attempts of one invocation (run id)")
	pathPattern := flag.String("path", "", "Filter removals by path pattern (SQL LIKE syntax)")
	stats := flag.Bool("stats", false, "Show run statistics")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := history.New(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecentRuns(db, *recent, *jsonOutput)
	case *taskName != "":
		showRunsByTask(db, *taskName, *jsonOutput)
	case *status != "":
		showRunsByStatus(db, *status, *jsonOutput)
	case *removals > 0:
		showRecentRemovals(db, *removals, *jsonOutput)
	case *run != "":
		showRemovalsByRun(db, *run, *jsonOutput)
	case *pathPattern != "":
		showRemovalsByPath(db, *pathPattern, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  devtask-query --recent 10          # Show 10 most recent task runs")
		fmt.Println("  devtask-query --stats              # Show run statistics")
		fmt.Println("  devtask-query --task pytest        # Show runs of the pytest task")
		fmt.Println("  devtask-query --status FAIL        # Show only failed runs")
		fmt.Println("  devtask-query --removals 20        # Show 20 most recent removals")
		fmt.Println("  devtask-query --path 'build%'      # Show removals under build")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *history.DB, days int, jsonOutput bool) {
	stats, err := db.GetStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Run Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Runs:      %d\n", stats.TotalRuns)
	fmt.Printf("Succeeded:       %d\n", stats.RunsOK)
	fmt.Printf("Failed:          %d\n", stats.RunsFailed)
	fmt.Printf("Errored:         %d\n", stats.RunsErrored)
	fmt.Printf("Total Removals:  %d\n\n", stats.TotalRemovals)

	if len(stats.ByTask) > 0 {
		fmt.Println("By Task:")
		for task, count := range stats.ByTask {
			fmt.Printf("  %-15s %d\n", task, count)
		}
		fmt.Println()
	}

	if len(stats.ByStatus) > 0 {
		fmt.Println("By Status:")
		for status, count := range stats.ByStatus {
			fmt.Printf("  %-15s %d\n", status, count)
		}
	}
}

func showRecentRuns(db *history.DB, limit int, jsonOutput bool) {
	runs, err := db.GetRecentRuns(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent runs: %v", err)
	}
	printRuns(runs, jsonOutput)
}

func showRunsByTask(db *history.DB, task string, jsonOutput bool) {
	runs, err := db.GetRunsByTask(task)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by task: %v", err)
	}
	if !jsonOutput {
		fmt.Printf("Runs of task: %s\n\n", task)
	}
	printRuns(runs, jsonOutput)
}

func showRunsByStatus(db *history.DB, status string, jsonOutput bool) {
	runs, err := db.GetRunsByStatus(status)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by status: %v", err)
	}
	if !jsonOutput {
		fmt.Printf("Runs with status: %s\n\n", status)
	}
	printRuns(runs, jsonOutput)
}

func showRecentRemovals(db *history.DB, limit int, jsonOutput bool) {
	removals, err := db.GetRecentRemovals(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent removals: %v", err)
	}
	printRemovals(removals, jsonOutput)
}

func showRemovalsByRun(db *history.DB, runID string, jsonOutput bool) {
	removals, err := db.GetRemovalsByRun(runID)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by run id: %v", err)
	}
	if !jsonOutput {
		fmt.Printf("Removals of run: %s\n\n", runID)
	}
	printRemovals(removals, jsonOutput)
}

func showRemovalsByPath(db *history.DB, pathPattern string, jsonOutput bool) {
	removals, err := db.GetRemovalsByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}
	if !jsonOutput {
		fmt.Printf("Removals matching path pattern: %s\n\n", pathPattern)
	}
	printRemovals(removals, jsonOutput)
}

func printRuns(runs []history.TaskRun, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(runs) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tStarted\tTask\tStatus\tExit\tRun")
	fmt.Fprintln(w, "--\t-------\t----\t------\t----\t---")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Task, r.Status, r.ExitCode, r.RunID)
	}
	w.Flush()
}

func printRemovals(removals []history.Removal, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.MarshalIndent(removals, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(removals) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTimestamp\tTask\tOutcome\tPath")
	fmt.Fprintln(w, "--\t---------\t----\t-------\t----")
	for _, r := range removals {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Task, r.Outcome, r.Path)
	}
	w.Flush()
}
