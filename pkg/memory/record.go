package memory

import (
	"encoding/json"

	"github.com/papercomputeco/rsum/pkg/prompt"
)

// Record is an ordered mapping from verification question to answer.
// Setting an existing question replaces its answer in place, so the first
// insertion fixes the position and the last write fixes the value.
type Record struct {
	order   []Question
	answers map[Question]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{answers: make(map[Question]string)}
}

// Set records an answer for q.
func (r *Record) Set(q Question, answer string) {
	if _, ok := r.answers[q]; !ok {
		r.order = append(r.order, q)
	}
	r.answers[q] = answer
}

// Get returns the answer for q.
func (r *Record) Get(q Question) (string, bool) {
	a, ok := r.answers[q]
	return a, ok
}

// Len returns the number of distinct questions.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Pairs returns every question and answer in insertion order.
func (r *Record) Pairs() []prompt.QA {
	if r == nil {
		return nil
	}
	pairs := make([]prompt.QA, 0, len(r.order))
	for _, q := range r.order {
		pairs = append(pairs, prompt.QA{Question: string(q), Answer: r.answers[q]})
	}
	return pairs
}

type recordPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MarshalJSON encodes the record as an ordered list of pairs.
func (r *Record) MarshalJSON() ([]byte, error) {
	pairs := r.Pairs()
	out := make([]recordPair, len(pairs))
	for i, p := range pairs {
		out[i] = recordPair(p)
	}
	return json.Marshal(out)
}
