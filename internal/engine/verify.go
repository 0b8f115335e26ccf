package engine

import (
	"fmt"
	"os"
)

// Verifier compares a copied file against its source. Checks are
// ordered cheapest first: existence, then length, then content digest.
// A length mismatch never reaches the digest.
type Verifier struct {
	Digest DigestFunc
}

// NewVerifier builds a Verifier around the given digest function.
func NewVerifier(digest DigestFunc) Verifier {
	return Verifier{Digest: digest}
}

// Compare checks that dstPath is a byte-identical copy of srcPath.
// It never returns an error: every failure mode lands in the outcome
// so the caller can file it in the report.
func (v Verifier) Compare(srcPath, dstPath string) VerificationOutcome {
	out := VerificationOutcome{SourcePath: srcPath, DestinationPath: dstPath}

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		out.Error = "source file missing"
		return out
	}
	out.SourceSize = srcInfo.Size()

	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		out.Error = "destination file missing"
		return out
	}
	out.DestinationSize = dstInfo.Size()

	if out.SourceSize != out.DestinationSize {
		out.Error = fmt.Sprintf("size mismatch: source=%d destination=%d", out.SourceSize, out.DestinationSize)
		return out
	}

	out.SourceHash, err = v.Digest(srcPath)
	if err != nil {
		out.Error = fmt.Sprintf("hash source: %v", err)
		return out
	}

	out.DestinationHash, err = v.Digest(dstPath)
	if err != nil {
		out.Error = fmt.Sprintf("hash destination: %v", err)
		return out
	}

	if out.SourceHash != out.DestinationHash {
		out.Error = "hash mismatch"
		return out
	}

	out.Matched = true
	return out
}
