// Package trace parses valgrind-style memory trace files into typed
// access records.
//
// A trace line looks like ` L 0x7ff0,4`: an operation letter, a hex
// address, and a byte count. Data operations are indented by one space;
// instruction fetches start at column zero.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// An Op is the kind of memory operation a trace record describes.
type Op byte

// The operations that appear in valgrind traces.
const (
	Load        Op = 'L'
	Store       Op = 'S'
	Modify      Op = 'M'
	Instruction Op = 'I'
)

// String returns the single-letter spelling used in trace files.
func (o Op) String() string {
	return string(byte(o))
}

// An Access is one parsed trace record.
type Access struct {
	Op      Op
	Address uint64
	Size    uint64
}

// ParseFile reads the trace file at path.
func ParseFile(path string) ([]Access, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer file.Close()

	accesses, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return accesses, nil
}

// Parse reads trace records from r in order. Blank lines and instruction
// fetches are dropped, since the simulated cache only sees data accesses.
// A malformed line aborts the parse with an error naming the line.
func Parse(r io.Reader) ([]Access, error) {
	var accesses []Access

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		access, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d %q: %w", lineNum, line, err)
		}

		if access.Op == Instruction {
			continue
		}

		accesses = append(accesses, access)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	return accesses, nil
}

func parseLine(line string) (Access, error) {
	opStr, rest, found := strings.Cut(line, " ")
	if !found {
		return Access{}, fmt.Errorf("expected \"op address,size\"")
	}

	if len(opStr) != 1 {
		return Access{}, fmt.Errorf("unknown operation %q", opStr)
	}

	op := Op(opStr[0])
	switch op {
	case Load, Store, Modify, Instruction:
	default:
		return Access{}, fmt.Errorf("unknown operation %q", opStr)
	}

	addrStr, sizeStr, found := strings.Cut(strings.TrimSpace(rest), ",")
	if !found {
		return Access{}, fmt.Errorf("expected \"address,size\"")
	}

	addr, err := strconv.ParseUint(
		strings.TrimPrefix(addrStr, "0x"), 16, 64)
	if err != nil {
		return Access{}, fmt.Errorf("bad address %q", addrStr)
	}

	size, err := strconv.ParseUint(strings.TrimSpace(sizeStr), 10, 64)
	if err != nil {
		return Access{}, fmt.Errorf("bad size %q", sizeStr)
	}

	return Access{Op: op, Address: addr, Size: size}, nil
}
