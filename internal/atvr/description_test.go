package atvr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionScraper_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `<html><body>
			<div id="tabs0"><p>Wrong tab</p></div>
			<div id="tabs1"><p> Gullinn lager með léttri beiskju. </p><p>Second</p></div>
		</body></html>`)
	}))
	defer srv.Close()

	s := NewDescriptionScraper(srv.URL+"/vara.aspx/", time.Second)
	desc, err := s.Fetch(context.Background(), "87")
	require.NoError(t, err)
	assert.Equal(t, "Gullinn lager með léttri beiskju.", desc)
	assert.Equal(t, "productid=00087/", gotQuery)
}

func TestDescriptionScraper_MissingMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>nothing here</p></body></html>`)
	}))
	defer srv.Close()

	desc, err := NewDescriptionScraper(srv.URL, time.Second).Fetch(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, desc)
}

func TestDescriptionScraper_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewDescriptionScraper(srv.URL, time.Second).Fetch(context.Background(), "1")
	assert.Error(t, err)
}
