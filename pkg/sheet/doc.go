// Package sheet reads batch input rows from xlsx workbooks and writes result
// workbooks with the rationale and conclusion columns appended.
package sheet
