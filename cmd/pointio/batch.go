package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/pointio"
)

// result pairs a job with its conversion outcome.
type result struct {
	job    job
	report pointio.Report
}

// convertFunc converts one job. runJobs calls it from several goroutines.
type convertFunc func(j job) (pointio.Report, error)

// runJobs converts jobs with the given number of consumer goroutines.
//
// A producer goroutine feeds the work channel and closes it once every job
// is submitted. A consumer that fails reports the error and keeps working on
// the remaining jobs, so one bad file does not stop a folder conversion.
//
// Returns:
//   - []result: Successful conversions, in job order
//   - error: All conversion errors joined, nil when every job succeeded
func runJobs(jobs []job, workers int, convert convertFunc) ([]result, error) {
	workChannel := make(chan int, workers*5)
	resultChannel := make(chan result, len(jobs))
	errorChannel := make(chan error, len(jobs))

	var waitGroup sync.WaitGroup

	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		for i := range jobs {
			workChannel <- i
		}
		close(workChannel)
	}()

	for range workers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for i := range workChannel {
				report, err := convert(jobs[i])
				if err != nil {
					errorChannel <- fmt.Errorf("%s: %w", jobs[i].Input, err)
					continue
				}
				resultChannel <- result{job: jobs[i], report: report}
			}
		}()
	}

	waitGroup.Wait()
	close(resultChannel)
	close(errorChannel)

	done := make(map[string]result, len(jobs))
	for r := range resultChannel {
		done[r.job.Input] = r
	}
	results := make([]result, 0, len(done))
	for _, j := range jobs {
		if r, ok := done[j.Input]; ok {
			results = append(results, r)
		}
	}

	var errList []error
	for err := range errorChannel {
		errList = append(errList, err)
	}

	return results, errors.Join(errList...)
}
