// Package batch checks rows of product copy against a compliance rule.
//
// Each row is turned into text (TextSpec), scanned for the rule's reference
// keywords, sent to the checker with a prompt that carries only the detected
// references, and mapped to a conclusion. Rows are isolated from each other:
// a failing row becomes an ERROR outcome and the batch carries on.
//
//	p := batch.NewProcessor(repo, detector, client, batch.Options{
//	    Workers: 4,
//	    Spec:    batch.TextSpec{IDColumn: "商品コード"},
//	})
//	outcomes, err := p.Process(ctx, rows, "商品コピーチェック")
//
// Outcomes are returned in input order regardless of the worker count.
package batch
