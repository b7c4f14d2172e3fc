// Saturn is a temporal-aware access-control decision engine.
//
// It extends the classical contextual-integrity tuple with a temporal
// dimension and composes access decisions from legal holds, emergency
// overrides, service bypass, weighted rule matching, and organizational
// context.
//
// Usage:
//
//	# Run the engine daemon (rule watcher, cache sweeper, metrics)
//	saturn serve --config config.yaml
//
//	# Evaluate a single request
//	saturn evaluate --config config.yaml --data-type financial \
//	    --sender emp-5892 --recipient oncall-team --subject emp-2109
//
//	# Validate a rules file
//	saturn lint --file rules.yaml
//
//	# Show version information
//	saturn version
package main

func main() {
	Execute()
}
