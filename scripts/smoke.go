package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/go-travel-budget-planner/internal/types"
)

var (
	baseURL     = flag.String("base-url", "http://localhost:8000", "base URL of a running planner instance")
	origin      = flag.String("origin", "LIS", "origin IATA code")
	destination = flag.String("destination", "PAR", "destination IATA code")
)

// Manual smoke run against a live server: one budget request and one
// schedule request, responses pretty-printed. Useful for eyeballing
// provider and LLM behaviour with real credentials loaded.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}
	flag.Parse()

	client := &http.Client{Timeout: 90 * time.Second}
	departure := time.Now().AddDate(0, 1, 0)

	post(client, *baseURL+"/api/v1/budget", types.BudgetRequest{
		Origin:        *origin,
		Destination:   *destination,
		DepartureDate: departure.Format("2006-01-02"),
		ReturnDate:    departure.AddDate(0, 0, 4).Format("2006-01-02"),
		Travelers:     2,
		TravelStyle:   types.StyleModerate,
		Interests:     []string{"museums", "food"},
	})

	post(client, *baseURL+"/api/v1/itinerary/schedule", types.ScheduleRequest{
		Activities: []types.Activity{
			{
				Name:            "Old Town Walking Tour",
				Description:     "Morning walk through the historic centre",
				DurationHours:   2.5,
				Price:           types.Price{Amount: 18, Currency: "EUR"},
				Category:        "tours",
				Rating:          4.6,
				NumberOfReviews: 1200,
			},
			{
				Name:            "River Dinner Cruise",
				Description:     "Evening cruise with dinner on board",
				DurationHours:   2,
				Price:           types.Price{Amount: 85, Currency: "EUR"},
				Category:        "cruises",
				Rating:          4.4,
				NumberOfReviews: 800,
			},
		},
		Preferences: types.SchedulePreferences{TripDays: 2, DailyBudget: 150},
	})
}

func post(client *http.Client, url string, payload interface{}) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("POST %s\n%s\n", url, body)

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Status:", resp.Status)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}
