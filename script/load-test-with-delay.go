package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// LoanRequest is the payload of POST /loans
type LoanRequest struct {
	InterestRatePercent uint64 `json:"interestRatePercent"`
	DurationSeconds     int64  `json:"durationSeconds"`
	CollateralAmount    string `json:"collateralAmount"`
}

// AmountRequest is the payload of fund, repay and deposit calls
type AmountRequest struct {
	Amount string `json:"amount"`
}

// LoanResponse holds the fields of a loan the test needs
type LoanResponse struct {
	LoanID          uint64 `json:"loanId"`
	LoanAmount      string `json:"loanAmount"`
	RepaymentAmount string `json:"repaymentAmount"`
	Status          string `json:"status"`
}

// TestResult contains metrics for a single loan cycle
type TestResult struct {
	Success      bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalCycles       int
	SuccessfulCycles  int
	FailedCycles      int
	TotalCalls        int
	TotalTime         time.Duration
	MinResponseTime   time.Duration
	MaxResponseTime   time.Duration
	TotalResponseTime time.Duration
	ResponseTimes     []time.Duration
	ErrorCounts       map[string]int
	BorrowerStats     map[string]int
	ScenarioStats     map[string]int
	Lock              sync.Mutex
}

// LoanScenario defines the terms of one requested loan and how far it is driven
type LoanScenario struct {
	Name       string
	Rate       uint64
	Duration   int64
	Collateral string
	Repay      bool
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalCycles := flag.Int("n", 100, "Total number of loan cycles to run")
	principalsStr := flag.String("p", "alice,bob,carol", "Comma-separated principals to borrow and lend")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	seed := flag.String("seed", "", "Amount to deposit into every principal before the run (needs ledger.allowDeposits)")
	delayMs := flag.Int("delay", 100, "Delay between cycles in milliseconds")
	flag.Parse()

	var principals []string
	for _, p := range strings.Split(*principalsStr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			principals = append(principals, p)
		}
	}
	if len(principals) < 2 {
		fmt.Println("At least two principals are needed so loans can be funded by someone else")
		return
	}

	scenarios := []LoanScenario{
		{"Short Repaid", 5, 3600, "10", true},
		{"Month Repaid", 10, 30 * 24 * 3600, "100", true},
		{"Zero Rate", 0, 3600, "25", true},
		{"Left Open", 20, 7 * 24 * 3600, "50", false},
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	if *seed != "" {
		for _, p := range principals {
			if _, err := post(client, *baseURL+"/accounts/"+p+"/deposit", p, AmountRequest{Amount: *seed}, nil); err != nil {
				fmt.Printf("Failed to seed %s: %v\n", p, err)
				return
			}
		}
	}

	fmt.Printf("Load testing loan API across %d principals: %v\n", len(principals), principals)
	fmt.Printf("Loan scenarios: %d different combinations\n", len(scenarios))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total cycles: %d\n", *totalCycles)
	fmt.Printf("Delay between cycles: %d ms\n", *delayMs)

	stats := &TestStats{
		TotalCycles:     *totalCycles,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalCycles),
		BorrowerStats:   make(map[string]int),
		ScenarioStats:   make(map[string]int),
	}

	results := make(chan TestResult, *totalCycles)
	jobs := make(chan int, *totalCycles)

	var wg sync.WaitGroup
	fmt.Println("Starting worker goroutines...")
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			worker(client, *baseURL, *delayMs, principals, scenarios, jobs, results, stats)
		}(i)
	}

	go func() {
		for i := 0; i < *totalCycles; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	var collected sync.WaitGroup
	collected.Add(1)
	go func() {
		defer collected.Done()
		for result := range results {
			stats.Lock.Lock()
			if result.Success {
				stats.SuccessfulCycles++
			} else {
				stats.FailedCycles++
				errMsg := "unknown"
				if result.Error != nil {
					errMsg = result.Error.Error()
				}
				stats.ErrorCounts[errMsg]++
			}

			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime

			if result.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = result.ResponseTime
			}
			if result.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = result.ResponseTime
			}
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.SuccessfulCycles + stats.FailedCycles
			if completed > 0 {
				fmt.Printf("Progress: %d/%d cycles completed (%.1f%%)\n",
					completed, stats.TotalCycles, float64(completed)/float64(stats.TotalCycles)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	collected.Wait()
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)

	printResults(stats)
}

// worker runs request, fund and optionally repay for every job it takes.
// Borrower and lender are always different principals.
func worker(client *http.Client, baseURL string, delayMs int, principals []string,
	scenarios []LoanScenario, jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		bi := rand.Intn(len(principals))
		li := (bi + 1 + rand.Intn(len(principals)-1)) % len(principals)
		borrower, lender := principals[bi], principals[li]
		scenario := scenarios[rand.Intn(len(scenarios))]

		stats.Lock.Lock()
		stats.BorrowerStats[borrower]++
		stats.ScenarioStats[scenario.Name]++
		stats.Lock.Unlock()

		startTime := time.Now()
		calls, status, err := runCycle(client, baseURL, borrower, lender, scenario)
		result := TestResult{
			ResponseTime: time.Since(startTime),
			StatusCode:   status,
			Success:      err == nil,
			Error:        err,
		}

		stats.Lock.Lock()
		stats.TotalCalls += calls
		stats.Lock.Unlock()

		results <- result
	}
}

func runCycle(client *http.Client, baseURL, borrower, lender string, scenario LoanScenario) (int, int, error) {
	var loan LoanResponse
	status, err := post(client, baseURL+"/loans", borrower, LoanRequest{
		InterestRatePercent: scenario.Rate,
		DurationSeconds:     scenario.Duration,
		CollateralAmount:    scenario.Collateral,
	}, &loan)
	if err != nil {
		return 1, status, err
	}

	loanURL := fmt.Sprintf("%s/loans/%d", baseURL, loan.LoanID)
	status, err = post(client, loanURL+"/fund", lender, AmountRequest{Amount: loan.LoanAmount}, nil)
	if err != nil || !scenario.Repay {
		return 2, status, err
	}

	status, err = post(client, loanURL+"/repay", borrower, AmountRequest{Amount: loan.RepaymentAmount}, nil)
	return 3, status, err
}

func post(client *http.Client, url, principal string, payload, out any) (int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Principal", principal)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func printResults(stats *TestStats) {
	seconds := stats.TotalTime.Seconds()
	cyclesPerSecond := float64(stats.SuccessfulCycles) / seconds
	callsPerSecond := float64(stats.TotalCalls) / seconds

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sortedTimes := make([]time.Duration, len(stats.ResponseTimes))
		copy(sortedTimes, stats.ResponseTimes)
		sort.Slice(sortedTimes, func(i, j int) bool { return sortedTimes[i] < sortedTimes[j] })

		p50 = sortedTimes[len(sortedTimes)*50/100]
		p90 = sortedTimes[len(sortedTimes)*90/100]
		p95 = sortedTimes[len(sortedTimes)*95/100]
		p99 = sortedTimes[len(sortedTimes)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Cycles:        %d\n", stats.TotalCycles)
	fmt.Printf("Successful Cycles:   %d (%.1f%%)\n", stats.SuccessfulCycles,
		float64(stats.SuccessfulCycles)/float64(stats.TotalCycles)*100)
	fmt.Printf("Failed Cycles:       %d (%.1f%%)\n", stats.FailedCycles,
		float64(stats.FailedCycles)/float64(stats.TotalCycles)*100)
	fmt.Printf("Registry Calls:      %d\n", stats.TotalCalls)
	fmt.Printf("Total Test Time:     %.2f seconds\n", seconds)

	fmt.Println("\n----------------- THROUGHPUT -----------------")
	fmt.Printf("Cycles per second:   %.2f\n", cyclesPerSecond)
	fmt.Printf("Calls per second:    %.2f\n", callsPerSecond)

	fmt.Println("\n----------------- CYCLE TIMES -----------------")
	fmt.Printf("Average Cycle:       %v\n", avgResponseTime)
	fmt.Printf("Minimum Cycle:       %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Cycle:       %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Cycle:           %v\n", p50)
	fmt.Printf("P90 Cycle:           %v\n", p90)
	fmt.Printf("P95 Cycle:           %v\n", p95)
	fmt.Printf("P99 Cycle:           %v\n", p99)

	fmt.Println("\n----------------- BORROWER DISTRIBUTION -----------------")
	for borrower, count := range stats.BorrowerStats {
		fmt.Printf("%-15s: %d cycles (%.1f%%)\n", borrower, count,
			float64(count)/float64(stats.TotalCycles)*100)
	}

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	for scenario, count := range stats.ScenarioStats {
		fmt.Printf("%-15s: %d cycles (%.1f%%)\n", scenario, count,
			float64(count)/float64(stats.TotalCycles)*100)
	}

	if stats.FailedCycles > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalCycles)*100)
		}
	}
	fmt.Println("================================================")
}
