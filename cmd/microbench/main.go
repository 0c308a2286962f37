// microbench times a fixed sequence of integer, floating-point and memory
// workloads and reports how long each one took.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
