package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
)

// Generates a gzipped sample code file for exercising the import endpoint:
//
//	go run scripts/generate_sample_codes.go [count] [output]
//
// Defaults to 10000 codes in data/codes/sample_codes.gz. Feed the output to
// POST /api/discounts/import with a campaign template.
func main() {
	count := 10000
	output := filepath.Join("data", "codes", "sample_codes.gz")

	if len(os.Args) > 1 {
		if _, err := fmt.Sscanf(os.Args[1], "%d", &count); err != nil {
			log.Fatalf("invalid count %q: %v", os.Args[1], err)
		}
	}
	if len(os.Args) > 2 {
		output = os.Args[2]
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	file, err := os.Create(output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", output, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	seen := make(map[string]struct{}, count)
	for len(seen) < count {
		code := make([]byte, 10)
		for i := range code {
			code[i] = alphabet[rand.Intn(len(alphabet))]
		}
		s := "SAVE" + string(code)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, err := fmt.Fprintln(gz, s); err != nil {
			log.Fatalf("Failed to write code: %v", err)
		}
	}

	fmt.Printf("Wrote %d codes to %s\n", count, output)
}
