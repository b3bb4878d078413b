package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartCreatesDistinctSessions(t *testing.T) {
	s := NewStore(time.Minute)
	a := s.Start()
	b := s.Start()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := NewStore(time.Minute)
	st := s.Start()
	st.LastAnswer = "The dividend is $0.50."
	st.Ticker = "VOLV-B.ST"
	s.Save(st)

	got, ok := s.Get(st.ID)
	require.True(t, ok)
	assert.Equal(t, "The dividend is $0.50.", got.LastAnswer)
	assert.Equal(t, "VOLV-B.ST", got.Ticker)
}

func TestGetUnknownSession(t *testing.T) {
	s := NewStore(time.Minute)
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestEndDiscardsSession(t *testing.T) {
	s := NewStore(time.Minute)
	st := s.Start()
	s.End(st.ID)
	_, ok := s.Get(st.ID)
	assert.False(t, ok)
}
