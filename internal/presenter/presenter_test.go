package presenter

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

// threadRecorder fails the test if two effects ever overlap.
type threadRecorder struct {
	*Recorder
	busy sync.Mutex
	t    *testing.T
}

func (r *threadRecorder) ShowMessage(text string) {
	if !r.busy.TryLock() {
		r.t.Error("effects overlapped")
		return
	}
	defer r.busy.Unlock()
	r.Recorder.ShowMessage(text)
}

func TestRecorder_OverwritesMessage(t *testing.T) {
	r := NewRecorder()
	r.ShowMessage("Username Empty.")
	r.ShowMessage("Login Failed. (Request Token).")
	assert.Equal(t, "Login Failed. (Request Token).", r.Message())
}

func TestShowFavorited(t *testing.T) {
	r := NewRecorder()
	ShowFavorited(r, true)
	assert.Equal(t, map[string]bool{"favorite": false, "unfavorite": true}, r.Controls())

	ShowFavorited(r, false)
	assert.Equal(t, map[string]bool{"favorite": true, "unfavorite": false}, r.Controls())
}

func TestGuard_DropsEffectsAfterDeactivate(t *testing.T) {
	r := NewRecorder()
	g := NewGuard(r)

	g.ShowMessage("first")
	g.Deactivate()
	g.ShowMessage("second")
	g.SetControlVisible(domain.ControlFavorite, true)
	g.NavigateToAuthenticatedScreen()

	assert.Equal(t, "first", r.Message())
	assert.Empty(t, r.Controls())
	assert.False(t, r.Navigated())
}

func TestLoop_SerializesEffects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(16)
	go loop.Run(ctx)

	target := &threadRecorder{Recorder: NewRecorder(), t: t}
	p := On(loop, target)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.ShowMessage("tick")
		}()
	}
	wg.Wait()
	loop.Flush()

	p.NavigateToAuthenticatedScreen()
	cancel()
	<-loop.Done()

	assert.Equal(t, "tick", target.Message())
	assert.True(t, target.Navigated())
}

func TestLoop_PostAfterShutdownDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(1)
	go loop.Run(ctx)
	cancel()
	<-loop.Done()

	r := NewRecorder()
	p := On(loop, r)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 10; i++ {
			p.ShowMessage("late")
		}
		loop.Flush()
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("posting to a stopped loop blocked")
	}
	assert.Empty(t, r.Message())
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.ShowMessage("Login Successful!")
	term.ShowMessage("")
	term.SetControlVisible(domain.ControlUnfavorite, true)
	term.NavigateToAuthenticatedScreen()

	assert.Equal(t, "Login Successful!\n[unfavorite] visible\n-> movies\n", buf.String())
}
