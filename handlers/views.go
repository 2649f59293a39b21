// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"github.com/dustin/go-humanize"

	"github.com/DevDaysSpring2024-29/project/models"
)

// entryView adds display text to an entry. Prices are in the smallest
// currency unit and rendered with thousands separators.
func entryView(e models.Entry) models.EntryView {
	v := models.EntryView{Entry: e}
	if e.Price != nil {
		v.PriceText = humanize.Comma(*e.Price)
	}
	return v
}

func matchView(e *models.Entry) *models.EntryView {
	if e == nil {
		return nil
	}
	v := entryView(*e)
	return &v
}

func roomView(snap models.RoomSnapshot) models.RoomView {
	view := models.RoomView{
		ID:           snap.ID,
		Owner:        snap.Owner,
		Status:       snap.Status,
		ProviderName: snap.Params.ProviderName,
		Participants: snap.Participants,
		OptionCount:  len(snap.Options),
	}
	if snap.Match != nil {
		view.Match = matchView(&snap.Options[*snap.Match])
	}
	return view
}
