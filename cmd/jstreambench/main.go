// Command jstreambench compares this package's structured-decode and
// passthrough-streaming modes against encoding/json, json-iterator/go, and
// bytedance/sonic over a corpus of gzip-compressed JSON fixtures. Modeled
// on the teacher's testdata/jibbyperf benchmark CLI, which times jibby
// against mongo-driver's bsonrw and a naive encoding/json baseline.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	jsoniter "github.com/json-iterator/go"

	gzipklauspost "github.com/klauspost/compress/gzip"
	"github.com/klauspost/cpuid/v2"

	"github.com/go-jstream/jstream"
)

func main() {
	dir := flag.String("dir", "testdata/fixtures", "directory of .json.gz fixtures")
	iterations := flag.Int("n", 5, "iterations per fixture")
	flag.Parse()

	fmt.Printf("cpu: %s (%d logical cores, features: AVX2=%v AVX512F=%v)\n",
		cpuid.CPU.BrandName, cpuid.CPU.LogicalCores, cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.AVX512F))

	fixtures, err := loadFixtures(*dir)
	if err != nil {
		log.Fatal(err)
	}
	if len(fixtures) == 0 {
		log.Fatalf("no .json.gz fixtures found under %s", *dir)
	}

	for _, f := range fixtures {
		fmt.Printf("\n%s (%d bytes)\n", f.name, len(f.data))
		report("encoding/json", *iterations, f.data, benchEncodingJSON)
		report("json-iterator/go", *iterations, f.data, benchJSONIterator)
		report("sonic", *iterations, f.data, benchSonic)
		report("jstream (structured)", *iterations, f.data, benchJstreamStructured)
		report("jstream (passthrough)", *iterations, f.data, benchJstreamPassthrough)
	}
}

type fixture struct {
	name string
	data []byte
}

// loadFixtures reads every *.json.gz file in dir, decompressing with
// klauspost/compress/gzip rather than the standard library's slower
// implementation.
func loadFixtures(dir string) ([]fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []fixture
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".gz" {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		zr, err := gzipklauspost.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		data, err := io.ReadAll(zr)
		zr.Close()
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, fixture{name: e.Name(), data: data})
	}
	return out, nil
}

func report(label string, iterations int, data []byte, fn func([]byte) error) {
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := fn(data); err != nil {
			fmt.Printf("  %-24s ERROR: %v\n", label, err)
			return
		}
	}
	elapsed := time.Since(start) / time.Duration(iterations)
	mbPerSec := float64(len(data)) / elapsed.Seconds() / (1024 * 1024)
	fmt.Printf("  %-24s %10s/iter  %8.1f MB/s\n", label, elapsed, mbPerSec)
}

func benchEncodingJSON(data []byte) error {
	var v any
	return json.Unmarshal(data, &v)
}

func benchJSONIterator(data []byte) error {
	var v any
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &v)
}

func benchSonic(data []byte) error {
	var v any
	return sonic.Unmarshal(data, &v)
}

// benchJstreamStructured walks the full document with the Reader Protocol,
// discarding values as it goes, exercising the same token path a real
// caller's BeginObject/NextName/NextString walk would take.
func benchJstreamStructured(data []byte) error {
	r := jstream.NewReader(bytesReader(data))
	return skipWholeDocument(r)
}

func skipWholeDocument(r *jstream.Reader) error {
	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		if kind == jstream.EndDocument {
			return nil
		}
		if err := r.SkipValue(); err != nil {
			return err
		}
	}
}

// benchJstreamPassthrough exercises the Passthrough Router instead of the
// structured decode path, copying every value to io.Discard.
func benchJstreamPassthrough(data []byte) error {
	r := jstream.NewReader(bytesReader(data))
	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		if kind == jstream.EndDocument {
			return nil
		}
		if err := r.StreamValue(io.Discard); err != nil {
			return err
		}
	}
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
