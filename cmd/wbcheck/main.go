// Package main provides the wbcheck CLI for validating entity records
// against declarative entity profiles before publication.
package main

func main() {
	Execute()
}
