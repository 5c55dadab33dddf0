package cmd

import "github.com/spf13/cobra"

var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "pathfinder",
	Short: "Type inference and taint data-flow analysis for a gradually-typed OO language",
	Long: `Code Pathfinder - expression type inference, flow-sensitive narrowing, and
taint data-flow analysis over one function body at a time.

Given a function body as a JSON-encoded AST (the analyzer's sole external
collaborator; parsing real source to that AST is out of scope), infers the
type of every expression, narrows variable types across conditionals and
loops, and traces tainted values from sources to sinks through a per-function
data-flow graph.`,
}

func Execute() error {
	return rootCmd.Execute()
}
