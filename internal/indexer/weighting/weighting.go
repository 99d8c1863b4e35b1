// Package weighting implements the SMART term-weighting family used by the
// index and by query vectors. A Scheme is three independent choices written
// as a three-letter code: term frequency, document frequency, normalization
// (for example "ltc" or "nnn").
package weighting

import (
	"fmt"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
)

// TF selects how a raw term count is scaled.
type TF byte

const (
	// TFNatural uses the raw count.
	TFNatural TF = 'n'
	// TFLog uses 1 + ln(count) for count > 0.
	TFLog TF = 'l'
)

// DF selects the collection-level specificity factor.
type DF byte

const (
	// DFNone is the constant 1.
	DFNone DF = 'n'
	// DFIDF is ln(N / df).
	DFIDF DF = 't'
)

// Norm selects vector length normalization.
type Norm byte

const (
	// NormNone leaves the vector unchanged.
	NormNone Norm = 'n'
	// NormCosine scales the vector to unit Euclidean length.
	NormCosine Norm = 'c'
)

// Scheme is a SMART weighting configuration. The zero value is not valid;
// use Parse or construct with the exported constants.
type Scheme struct {
	TF   TF
	DF   DF
	Norm Norm
}

// Default is "ltn", the setting the interactive driver starts with.
var Default = Scheme{TF: TFLog, DF: DFIDF, Norm: NormNone}

// Parse reads a three-letter SMART code such as "ltc".
func Parse(code string) (Scheme, error) {
	if len(code) != 3 {
		return Scheme{}, fmt.Errorf("%w: %q must have exactly three letters", apperrors.ErrInvalidScheme, code)
	}
	s := Scheme{TF: TF(code[0]), DF: DF(code[1]), Norm: Norm(code[2])}
	if err := s.Validate(); err != nil {
		return Scheme{}, err
	}
	return s, nil
}

// MustParse is Parse for package-level literals; it panics on a bad code.
func MustParse(code string) Scheme {
	s, err := Parse(code)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate reports whether every axis holds a known modifier.
func (s Scheme) Validate() error {
	switch s.TF {
	case TFNatural, TFLog:
	default:
		return fmt.Errorf("%w: unknown term-frequency modifier %q", apperrors.ErrInvalidScheme, rune(s.TF))
	}
	switch s.DF {
	case DFNone, DFIDF:
	default:
		return fmt.Errorf("%w: unknown document-frequency modifier %q", apperrors.ErrInvalidScheme, rune(s.DF))
	}
	switch s.Norm {
	case NormNone, NormCosine:
	default:
		return fmt.Errorf("%w: unknown normalization modifier %q", apperrors.ErrInvalidScheme, rune(s.Norm))
	}
	return nil
}

func (s Scheme) String() string {
	return fmt.Sprintf("%c%c%c", s.TF, s.DF, s.Norm)
}

// TFWeight scales a raw within-document (or within-query) count.
func (s Scheme) TFWeight(raw int) float64 {
	if raw <= 0 {
		return 0
	}
	if s.TF == TFLog {
		return 1 + math.Log(float64(raw))
	}
	return float64(raw)
}

// DFWeight returns the specificity factor for a term occurring in df of n
// documents. A term with df == 0 is absent from the collection and weighs 0.
func (s Scheme) DFWeight(df, n int) float64 {
	if df <= 0 || n <= 0 {
		return 0
	}
	if s.DF == DFIDF {
		return math.Log(float64(n) / float64(df))
	}
	return 1
}

// Weight combines TFWeight and DFWeight.
func (s Scheme) Weight(raw, df, n int) float64 {
	tf := s.TFWeight(raw)
	if tf == 0 {
		return 0
	}
	return tf * s.DFWeight(df, n)
}

// Cosine reports whether vectors are scaled to unit length.
func (s Scheme) Cosine() bool {
	return s.Norm == NormCosine
}

// Divisor returns the value a vector with the given Euclidean length is
// divided by. Zero-length vectors divide by 1.
func (s Scheme) Divisor(length float64) float64 {
	if s.Norm != NormCosine || length == 0 {
		return 1
	}
	return length
}

// Normalize divides every component of vec in place by Divisor(Length(vec))
// and returns vec.
func (s Scheme) Normalize(vec map[string]float64) map[string]float64 {
	d := s.Divisor(Length(vec))
	if d == 1 {
		return vec
	}
	for k, w := range vec {
		vec[k] = w / d
	}
	return vec
}

// Length is the Euclidean length of vec.
func Length(vec map[string]float64) float64 {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	return math.Sqrt(sum)
}
