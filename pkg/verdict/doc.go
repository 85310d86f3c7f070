// Package verdict defines row conclusions and extracts a conclusion from a
// checker response.
package verdict
