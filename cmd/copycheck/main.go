// Copycheck checks product copy against keyword-driven compliance rules.
//
// It composes a prompt from a rule corpus (a definition document plus one
// reference document per keyword), sends it with the product text to an
// OpenAI-compatible checker, and reads an OK/NG conclusion from the reply.
//
// Usage:
//
//	# Check a single text against every reference of the default rule
//	copycheck check --text "業界最安のサプリ" --mode full
//
//	# Check every row of a workbook
//	copycheck batch products.xlsx -o products_checked.xlsx
//
//	# Process the newest sheet in the remote input prefix
//	copycheck batch --latest
//
//	# Watch an inbox directory, or run remote batches on a schedule
//	copycheck watch --metrics-addr :9090
//	copycheck schedule --cron "0 * * * *"
//
//	# Inspect rules, the cache and run history
//	copycheck rules list
//	copycheck cache stats
//	copycheck history list
package main

func main() {
	Execute()
}
