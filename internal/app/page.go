package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/JaimeStill/statecheck/internal/sessions"
	"github.com/JaimeStill/statecheck/pkg/formatting"
)

// DefaultImageKey pre-fills the save form.
const DefaultImageKey = "MY_IMAGE__123abc"

// HistoryRow is one history event as shown on the page, numbered from 1
// with the most recent event first.
type HistoryRow struct {
	Number    int
	Timestamp string
	Corrected string
}

// PageData is the view-model for the diagnostic page.
type PageData struct {
	Session    sessions.Info
	Age        string
	Flash      sessions.Flash
	DefaultKey string
	Keys       []string
	Selected   string
	Original   string
	Corrected  string
	History    []HistoryRow
	Raw        string
}

type page struct {
	now func() time.Time
}

// load counts the render and builds the view-model from the requesting
// session. ?key= selects an override; unknown keys fall back to the first.
func (p *page) load(r *http.Request) (any, error) {
	s, ok := sessions.FromContext(r.Context())
	if !ok {
		return nil, sessions.ErrNoSession
	}

	fresh := sessions.IsFresh(r.Context())
	requested := r.URL.Query().Get("key")

	var (
		data PageData
		err  error
	)
	s.Update(func(st *sessions.State) {
		st.Renders++
		data, err = p.build(st, fresh, requested)
	})
	return data, err
}

func (p *page) build(st *sessions.State, fresh bool, requested string) (PageData, error) {
	store := st.Corrections

	data := PageData{
		Session:    st.Info(fresh),
		Age:        formatting.FormatAge(p.now().Sub(st.CreatedAt)),
		Flash:      st.TakeFlash(),
		DefaultKey: DefaultImageKey,
		Keys:       store.ListOverrideKeys(),
	}

	data.Selected = selectKey(data.Keys, requested)
	if data.Selected != "" {
		entry, _ := store.Override(data.Selected)
		data.Original = orPlaceholder(entry.Original, "(unknown)")
		data.Corrected = entry.Corrected

		for i, ev := range store.RecentHistory(data.Selected) {
			data.History = append(data.History, HistoryRow{
				Number:    i + 1,
				Timestamp: ev.Timestamp,
				Corrected: orPlaceholder(ev.Corrected, "(empty)"),
			})
		}
	}

	raw, err := json.MarshalIndent(store.Snapshot().Flatten(), "", "  ")
	if err != nil {
		return data, fmt.Errorf("render snapshot: %w", err)
	}
	data.Raw = string(raw)

	return data, nil
}

func selectKey(keys []string, requested string) string {
	if requested != "" && slices.Contains(keys, requested) {
		return requested
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}
