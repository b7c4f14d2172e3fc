package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/config"
	"mercator-hq/saturn/pkg/temporal"
)

var evaluateFlags struct {
	dataType              string
	subject               string
	sender                string
	recipient             string
	transmissionPrinciple string
	situation             string
	emergencyOverride     bool
	authorizationID       string
	businessHours         bool
	timestamp             string
	enrich                bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single access request",
	Long: `Evaluate one access request against the configured rule set and
print the composed decision as JSON.

With --enrich the temporal context is built from the organizational
graph (requires orggraph configuration); otherwise the context is
constructed from the flags alone.

Examples:
  # Evaluate with an explicit context
  saturn evaluate --data-type financial --sender emp-5892 \
      --recipient oncall-team --subject emp-2109 --situation EMERGENCY \
      --emergency-override --authorization-id AUTH-44

  # Evaluate with graph enrichment
  saturn evaluate --enrich --data-type payroll --sender emp-5892 \
      --recipient emp-2109 --subject emp-2109`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateFlags.dataType, "data-type", "unspecified", "data type classification")
	evaluateCmd.Flags().StringVar(&evaluateFlags.subject, "subject", "", "data subject")
	evaluateCmd.Flags().StringVar(&evaluateFlags.sender, "sender", "", "data sender")
	evaluateCmd.Flags().StringVar(&evaluateFlags.recipient, "recipient", "", "data recipient")
	evaluateCmd.Flags().StringVar(&evaluateFlags.transmissionPrinciple, "transmission-principle", "need_to_know", "transmission principle")
	evaluateCmd.Flags().StringVar(&evaluateFlags.situation, "situation", "NORMAL", "situation: NORMAL, EMERGENCY, AUDIT, INCIDENT")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.emergencyOverride, "emergency-override", false, "emergency override active")
	evaluateCmd.Flags().StringVar(&evaluateFlags.authorizationID, "authorization-id", "", "emergency authorization id")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.businessHours, "business-hours", true, "request is within business hours")
	evaluateCmd.Flags().StringVar(&evaluateFlags.timestamp, "timestamp", "", "evaluation timestamp (RFC3339, default now)")
	evaluateCmd.Flags().BoolVar(&evaluateFlags.enrich, "enrich", false, "build context from the organizational graph")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	timestamp := time.Now().UTC()
	if evaluateFlags.timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, evaluateFlags.timestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	ctx := context.Background()

	if evaluateFlags.enrich {
		decision, err := rt.composer.EvaluateEnriched(ctx,
			evaluateFlags.sender, evaluateFlags.recipient, evaluateFlags.subject,
			evaluateFlags.dataType, evaluateFlags.transmissionPrinciple, timestamp)
		if err != nil {
			return err
		}
		return printJSON(decision)
	}

	request, err := temporal.NewTuple(temporal.Tuple{
		DataType:              evaluateFlags.dataType,
		DataSubject:           evaluateFlags.subject,
		DataSender:            evaluateFlags.sender,
		DataRecipient:         evaluateFlags.recipient,
		TransmissionPrinciple: evaluateFlags.transmissionPrinciple,
		TemporalContext: &temporal.TemporalContext{
			Timestamp:                timestamp,
			Situation:                temporal.Situation(evaluateFlags.situation),
			EmergencyOverride:        evaluateFlags.emergencyOverride,
			EmergencyAuthorizationID: evaluateFlags.authorizationID,
			BusinessHours:            evaluateFlags.businessHours,
		},
	})
	if err != nil {
		return err
	}

	decision := rt.composer.Evaluate(ctx, request, nil)
	return printJSON(decision)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
