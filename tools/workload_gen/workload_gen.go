// Command workload_gen is a tiny helper utility to generate deterministic
// lease-duration datasets for load-testing a Manager-backed service outside
// `go test`. It emits newline-separated millisecond durations for a load
// generator to consume; this repository ships no such service or generator.
//
// Usage:
//
//	go run ./tools/workload_gen -n 100000 -dist=zipf -seed=42 -out durations.txt
//
// Flags:
//
//	-n       number of durations to generate (default 100000)
//	-dist    distribution: "uniform" or "zipf" (default uniform)
//	-max-ms  upper bound for uniform durations, in milliseconds (default 50)
//	-zipfs   Zipf s parameter (>1)
//	-zipfv   Zipf v parameter (>=1)
//	-seed    RNG seed (default current time)
//	-out     output file (default stdout)
//
// Adapted from this module's ancestor cache's dataset_gen, which emitted
// uniform/Zipf-distributed cache keys for its own benchmark harness; the
// distribution machinery carries over unchanged, only the payload (key ->
// lease duration) changed.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	var (
		n       = flag.Int("n", 100_000, "number of durations to generate")
		dist    = flag.String("dist", "uniform", "distribution: uniform or zipf")
		maxMS   = flag.Int64("max-ms", 50, "upper bound for uniform durations, in ms")
		zipfS   = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV   = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	var gen func() uint64
	switch *dist {
	case "uniform":
		gen = func() uint64 { return uint64(rnd.Int63n(*maxMS)) + 1 }
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1.0 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, uint64(*maxMS))
		gen = func() uint64 { return z.Uint64() + 1 }
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	for i := 0; i < *n; i++ {
		fmt.Fprintln(w, gen())
	}
}
