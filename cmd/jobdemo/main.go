// Command jobdemo runs the scheduler's worked example: hashing and
// summing a million numbers, once on a single goroutine and once as a
// three-node job graph, and reports both timings side by side.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/hlehtosalo/job-scheduler/internal/demo"
)

func main() {
	workers := flag.Int("workers", runtime.NumCPU(), "Number of worker threads (including the calling goroutine).")
	chunks := flag.Int("chunks", 32, "Number of job-record chunks the scheduler pre-allocates.")
	flag.Parse()

	fmt.Printf("Running scheduler with %d worker threads (including the calling goroutine).\n\n", *workers)

	fmt.Println("***Scheduler benchmark***")
	fmt.Printf("Generating %d pseudorandom numbers using a quite expensive hash function,\nand calculating their sum.\n\n", 1024*1024)

	result := demo.Run(*workers, *chunks)

	fmt.Printf("Single-thread benchmark: %v\n", result.SingleThreadDuration)
	fmt.Printf("Scheduler run: %v\n", result.SchedulerDuration)
	fmt.Printf("Ratio (benchmark time / scheduler time): %.2f\n\n",
		result.SingleThreadDuration.Seconds()/result.SchedulerDuration.Seconds())

	fmt.Printf("Benchmark calculation result: %d\n", result.SingleThreadResult)
	fmt.Printf("Scheduler calculation result: %d\n", result.SchedulerResult)
	if result.Correct {
		fmt.Println("Correct result!")
	} else {
		fmt.Println("Incorrect result!")
	}
	fmt.Println()

	fmt.Println("\t***Details***")
	if _, err := result.Statistics.WriteTo(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write statistics:", err)
		os.Exit(1)
	}
}
