package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"Hedera-Agent-Economy/sdk/go/agenteconomy"
)

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(agenteconomy.Health{
			Status:           "ok",
			HederaNetwork:    "testnet",
			TopicID:          "0.0.demo",
			AgentsRegistered: 6,
			DemoMode:         true,
		})
	})
	mux.HandleFunc("/task", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(agenteconomy.Receipt{
				TaskID:      "task-demo1234",
				Status:      "completed",
				Result:      "Summary: hashgraph consensus notes… [AI condensed to 3 key points via HCS-verified consensus]",
				CostHBAR:    0.5,
				DurationMS:  463,
				AssignedTo:  "worker-summarizer",
				TxID:        "0.0.5483526@1708771234.000000001",
				HCSSequence: 1004,
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(agenteconomy.LegacyStats{
			TotalAgents:      6,
			TotalTasks:       799,
			CompletedTasks:   799,
			TotalHBARSettled: 2.75,
			HCSMessages:      4,
			TopicID:          "0.0.demo",
			DemoMode:         true,
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := agenteconomy.NewClient(srv.URL, srv.Client())
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("daemon %s on %s with %d agents\n", health.Status, health.HederaNetwork, health.AgentsRegistered)

	receipt, err := client.SubmitTask(ctx, agenteconomy.TaskRequest{
		TaskType:   "summarize",
		Payload:    "hashgraph consensus notes",
		BudgetHBAR: agenteconomy.Budget(0.5),
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("task %s settled by %s for %.2f HBAR (tx %s)\n", receipt.TaskID, receipt.AssignedTo, receipt.CostHBAR, receipt.TxID)

	stats, err := client.Stats(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("economy total: %d tasks, %.4f HBAR settled\n", stats.CompletedTasks, stats.TotalHBARSettled)
}
