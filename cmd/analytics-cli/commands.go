package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bizops-analytics-api/pkg/models"
	"bizops-analytics-api/pkg/services"

	"github.com/spf13/cobra"
)

func (a *app) anomaliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomalies <series.xlsx|series.csv>",
		Short: "Detect z-score anomalies in a date/value series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			points, err := readSeries(args[0])
			if err != nil {
				return err
			}
			result, err := svc.DetectAnomalies(points, a.v.GetFloat64("threshold"))
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		},
	}
	cmd.Flags().Float64("threshold", services.DefaultAnomalyThreshold, "z-score threshold")
	_ = a.v.BindPFlag("threshold", cmd.Flags().Lookup("threshold"))
	return cmd
}

func (a *app) demandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demand <series.xlsx|series.csv>",
		Short: "Forecast daily demand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			points, err := readSeries(args[0])
			if err != nil {
				return err
			}
			result, err := svc.ForecastDemand(services.ToDemandObservations(points), a.v.GetInt("days-ahead"))
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		},
	}
	cmd.Flags().Int("days-ahead", 7, "number of days to forecast")
	_ = a.v.BindPFlag("days-ahead", cmd.Flags().Lookup("days-ahead"))
	return cmd
}

func (a *app) revenueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue <orders.xlsx|orders.csv>",
		Short: "Forecast monthly revenue from order amounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			points, err := readSeries(args[0])
			if err != nil {
				return err
			}
			result, err := svc.ForecastRevenue(services.ToRevenueObservations(points), a.v.GetInt("months"))
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		},
	}
	cmd.Flags().Int("months", 3, "number of months to forecast")
	_ = a.v.BindPFlag("months", cmd.Flags().Lookup("months"))
	return cmd
}

func (a *app) churnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "churn <customers.json>",
		Short: "Score churn risk for a JSON array of customer features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			var customers []models.CustomerFeatureSet
			if err := readJSONFile(args[0], &customers); err != nil {
				return err
			}
			result, err := svc.ScoreChurnRisk(customers)
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		},
	}
}

func (a *app) inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory <products.json>",
		Short: "Compute safety stock, reorder point and EOQ for a JSON array of products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			var products []models.InventoryItemSnapshot
			if err := readJSONFile(args[0], &products); err != nil {
				return err
			}
			result, err := svc.OptimizeInventory(products)
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		},
	}
}

// recommendInput recommend サブコマンドが読むJSONファイルの形
type recommendInput struct {
	CustomerID string                       `json:"customer_id"`
	History    []models.PurchaseHistoryItem `json:"history"`
	Catalog    []models.ProductCandidate    `json:"catalog"`
}

func (a *app) recommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <request.json>",
		Short: "Recommend catalog products for a customer's purchase history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			var input recommendInput
			if err := readJSONFile(args[0], &input); err != nil {
				return err
			}
			result, err := svc.RecommendProducts(input.CustomerID, input.History, input.Catalog, a.v.GetInt("limit"))
			if err != nil {
				return err
			}
			return printJSON(a.out, result)
		},
	}
	cmd.Flags().Int("limit", 5, "maximum number of recommendations")
	_ = a.v.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	return cmd
}

func readSeries(path string) ([]models.TimePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return services.ParseSeriesFile(filepath.Base(path), f)
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
