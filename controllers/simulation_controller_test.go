package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"pitchhub/services"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrSessionNotFound, http.StatusNotFound},
		{services.ErrTurnInProgress, http.StatusConflict},
		{services.ErrSessionEnded, http.StatusGone},
		{fmt.Errorf("end failed: %w", services.ErrTurnInProgress), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := errorStatus(c.err); got != c.want {
			t.Errorf("errorStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
