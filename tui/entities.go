package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"lovenest/client"
	"lovenest/forms"
	"lovenest/models"
	"lovenest/store"
	"lovenest/theme"
	"lovenest/validate"
	"lovenest/viewmodel"
)

func newPanes(api *client.API) []pane {
	return []pane{
		newPlansPane(api),
		newBucketListPane(api),
		newDreamsPane(api),
		newMilestonesPane(api),
		newCinemaPane(api),
	}
}

func categoryOptions[S ~string](entity string, cats []S) []huh.Option[S] {
	opts := make([]huh.Option[S], len(cats))
	for i, c := range cats {
		s := viewmodel.CategoryStyle(entity, string(c))
		opts[i] = huh.NewOption(s.Emoji+" "+s.Label, c)
	}
	return opts
}

func check(p theme.Palette, done bool) string {
	if done {
		return p.CheckedMark
	}
	return p.UncheckedMark
}

// splitList turns "a, b,, c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func newPlansPane(api *client.API) *listPane[models.Plan] {
	return &listPane[models.Plan]{
		name:   store.Plans,
		title:  "Plans",
		schema: viewmodel.Plans,
		month:  func(p models.Plan) string { return p.Date },
		label:  func(p models.Plan) string { return p.Title },
		blank:  func() models.Plan { return models.Plan{Type: models.PlanDate, Date: time.Now().Format(time.DateOnly)} },
		line: func(pal theme.Palette, p models.Plan) string {
			row := fmt.Sprintf("%s %s  %s  %s", check(pal, p.IsCompleted), p.Title,
				pal.Badge("plans", string(p.Type)), viewmodel.DisplayDate(p.Date, viewmodel.PlanNoDate))
			if p.Memory != nil {
				row += "  " + stars(p.Memory.Rating)
			}
			if p.IsCompleted {
				return pal.Done.Render(row)
			}
			return row
		},
		detail: func(_ theme.Palette, p models.Plan) []string {
			var out []string
			if p.Website != "" {
				out = append(out, "web:  "+p.Website)
			}
			if p.MapsLink != "" {
				out = append(out, "map:  "+p.MapsLink)
			}
			if m := p.Memory; m != nil {
				for _, n := range m.Notes {
					out = append(out, "“"+n+"”")
				}
				if len(m.Photos) > 0 {
					out = append(out, fmt.Sprintf("%d photo(s)", len(m.Photos)))
				}
			}
			return out
		},
		edit: planEditor,
		toggle: func(ctx context.Context, p models.Plan) error {
			return api.TogglePlan(ctx, p.ID, !p.IsCompleted)
		},
		remove: api.Plans.Remove,
		forms: forms.New(models.Plan.Validate, forms.Mutations[models.Plan]{
			Create: api.Plans.Add,
			Update: func(ctx context.Context, id string, p models.Plan) error {
				return api.Plans.Update(ctx, id, store.Fields{
					"title":    p.Title,
					"date":     p.Date,
					"type":     p.Type,
					"website":  p.Website,
					"mapsLink": p.MapsLink,
				})
			},
		}),
	}
}

func planEditor(d models.Plan, _ *string) (*huh.Form, func() models.Plan) {
	title, date, website, maps := d.Title, d.Date, d.Website, d.MapsLink
	kind := d.Type
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&title),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&date),
			huh.NewSelect[models.PlanType]().
				Title("Type").
				Options(categoryOptions("plans", models.PlanTypes)...).
				Value(&kind),
			huh.NewInput().Title("Website").Value(&website),
			huh.NewInput().Title("Maps link").Value(&maps),
		),
	)
	return form, func() models.Plan {
		d.Title = strings.TrimSpace(title)
		d.Date = strings.TrimSpace(date)
		d.Type = kind
		d.Website = strings.TrimSpace(website)
		d.MapsLink = strings.TrimSpace(maps)
		return d
	}
}

func newBucketListPane(api *client.API) *listPane[models.BucketListItem] {
	return &listPane[models.BucketListItem]{
		name:   store.BucketList,
		title:  "Bucket List",
		schema: viewmodel.BucketList,
		label:  func(b models.BucketListItem) string { return b.Title },
		blank:  func() models.BucketListItem { return models.BucketListItem{Category: models.BucketAdventure} },
		line: func(pal theme.Palette, b models.BucketListItem) string {
			row := fmt.Sprintf("%s %s  %s  %s", check(pal, b.IsCompleted), b.Title,
				pal.Badge("bucketList", string(b.Category)), viewmodel.DisplayDate(b.TargetDate, viewmodel.BucketNoDate))
			if b.IsCompleted {
				return pal.Done.Render(row)
			}
			return row
		},
		detail: func(_ theme.Palette, b models.BucketListItem) []string {
			var out []string
			if b.Notes != "" {
				out = append(out, b.Notes)
			}
			if l := b.Links; l != nil {
				for _, link := range [][2]string{
					{"flights", l.Flights}, {"airbnb", l.Airbnb}, {"maps", l.Maps},
					{"tripadvisor", l.Tripadvisor}, {"website", l.Website},
				} {
					if link[1] != "" {
						out = append(out, link[0]+": "+link[1])
					}
				}
			}
			return out
		},
		edit: bucketEditor,
		toggle: func(ctx context.Context, b models.BucketListItem) error {
			return api.ToggleBucketItem(ctx, b.ID, !b.IsCompleted)
		},
		remove: api.BucketList.Remove,
		forms: forms.New(models.BucketListItem.Validate, forms.Mutations[models.BucketListItem]{
			Create: api.BucketList.Add,
			Update: func(ctx context.Context, id string, b models.BucketListItem) error {
				return api.BucketList.Update(ctx, id, store.Fields{
					"title":      b.Title,
					"category":   b.Category,
					"targetDate": b.TargetDate,
					"links":      b.Links,
					"notes":      b.Notes,
				})
			},
		}),
	}
}

func bucketEditor(d models.BucketListItem, _ *string) (*huh.Form, func() models.BucketListItem) {
	title, target, notes := d.Title, d.TargetDate, d.Notes
	category := d.Category
	var links models.BucketLinks
	if d.Links != nil {
		links = *d.Links
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&title),
			huh.NewSelect[models.BucketCategory]().
				Title("Category").
				Options(categoryOptions("bucketList", models.BucketCategories)...).
				Value(&category),
			huh.NewInput().Title("Target date").Placeholder("YYYY-MM-DD, empty for someday").Value(&target),
			huh.NewText().Title("Notes").Value(&notes),
		),
		huh.NewGroup(
			huh.NewInput().Title("Flights").Value(&links.Flights),
			huh.NewInput().Title("Airbnb").Value(&links.Airbnb),
			huh.NewInput().Title("Maps").Value(&links.Maps),
			huh.NewInput().Title("Tripadvisor").Value(&links.Tripadvisor),
			huh.NewInput().Title("Website").Value(&links.Website),
		).Title("Links"),
	)
	return form, func() models.BucketListItem {
		d.Title = strings.TrimSpace(title)
		d.Category = category
		d.TargetDate = strings.TrimSpace(target)
		d.Notes = strings.TrimSpace(notes)
		d.Links = nil
		if links != (models.BucketLinks{}) {
			l := links
			d.Links = &l
		}
		return d
	}
}

func newDreamsPane(api *client.API) *listPane[models.Dream] {
	return &listPane[models.Dream]{
		name:   store.Dreams,
		title:  "Dreams",
		schema: viewmodel.Dreams,
		label:  func(d models.Dream) string { return d.Title },
		blank:  func() models.Dream { return models.Dream{Category: models.DreamTravel} },
		line: func(pal theme.Palette, d models.Dream) string {
			return fmt.Sprintf("%s  %s", d.Title, pal.Badge("dreams", string(d.Category)))
		},
		detail: func(_ theme.Palette, d models.Dream) []string {
			var out []string
			if d.Description != "" {
				out = append(out, d.Description)
			}
			if d.ImageURL != "" {
				out = append(out, "image: "+d.ImageURL)
			}
			return out
		},
		edit:   dreamEditor,
		remove: api.Dreams.Remove,
		// Dreams are only ever created or removed.
		forms: forms.New(models.Dream.Validate, forms.Mutations[models.Dream]{Create: api.Dreams.Add}),
	}
}

func dreamEditor(d models.Dream, _ *string) (*huh.Form, func() models.Dream) {
	title, description, image := d.Title, d.Description, d.ImageURL
	category := d.Category
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&title),
			huh.NewSelect[models.DreamCategory]().
				Title("Category").
				Options(categoryOptions("dreams", models.DreamCategories)...).
				Value(&category),
			huh.NewText().Title("Description").Value(&description),
			huh.NewInput().Title("Image URL").Value(&image),
		),
	)
	return form, func() models.Dream {
		d.Title = strings.TrimSpace(title)
		d.Category = category
		d.Description = strings.TrimSpace(description)
		d.ImageURL = strings.TrimSpace(image)
		return d
	}
}

func newMilestonesPane(api *client.API) *listPane[models.Milestone] {
	return &listPane[models.Milestone]{
		name:   store.Milestones,
		title:  "Milestones",
		schema: viewmodel.Milestones,
		label:  func(m models.Milestone) string { return m.Title },
		blank: func() models.Milestone {
			return models.Milestone{Category: models.MilestoneSpecialMoment, Date: time.Now().Format(time.DateOnly)}
		},
		line: func(pal theme.Palette, m models.Milestone) string {
			if m.Icon == "" {
				m.DeriveIcon()
			}
			style := pal.CategoryStyle("milestones", string(m.Category))
			return fmt.Sprintf("%s %s  %s  %s", m.Icon, m.Title, viewmodel.DisplayDate(m.Date, "—"),
				pal.Muted.Foreground(style.Color).Render(style.Label))
		},
		detail: func(_ theme.Palette, m models.Milestone) []string {
			var out []string
			if m.Description != "" {
				out = append(out, m.Description)
			}
			for _, p := range m.Photos {
				out = append(out, "photo: "+p)
			}
			return out
		},
		edit:   milestoneEditor,
		attach: func(m models.Milestone, urls []string) models.Milestone {
			m.Photos = append(slices.Clip(m.Photos), urls...)
			return m
		},
		remove: api.Milestones.Remove,
		forms: forms.New(models.Milestone.Validate, forms.Mutations[models.Milestone]{
			Create: api.Milestones.Add,
			Update: func(ctx context.Context, id string, m models.Milestone) error {
				photos := m.Photos
				if photos == nil {
					photos = []string{}
				}
				return api.Milestones.Update(ctx, id, store.Fields{
					"title":       m.Title,
					"date":        m.Date,
					"description": m.Description,
					"category":    m.Category,
					"photos":      photos,
				})
			},
		}),
	}
}

func milestoneEditor(d models.Milestone, files *string) (*huh.Form, func() models.Milestone) {
	title, date, description := d.Title, d.Date, d.Description
	photos := strings.Join(d.Photos, ", ")
	category := d.Category
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&title),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&date),
			huh.NewSelect[models.MilestoneCategory]().
				Title("Category").
				Options(categoryOptions("milestones", models.MilestoneCategories)...).
				Value(&category),
			huh.NewText().Title("Description").Value(&description),
			huh.NewInput().Title("Photo URLs").Placeholder("comma separated").Value(&photos),
			huh.NewInput().
				Title("Add photos").
				Description("Image files, comma separated. Uploaded before saving.").
				Value(files).
				Validate(func(s string) error { return checkPhotos(s, 0) }),
		),
	)
	return form, func() models.Milestone {
		d.Title = strings.TrimSpace(title)
		d.Date = strings.TrimSpace(date)
		d.Category = category
		d.Description = strings.TrimSpace(description)
		d.Photos = splitList(photos)
		return d
	}
}

// validateMovieDraft checks what the user types; the poster is looked up by
// the server when the movie is added.
func validateMovieDraft(m models.Movie) error {
	e := validate.Errors{}
	validate.Required(e, "title", m.Title)
	validate.Required(e, "link", m.Link)
	validate.URL(e, "link", m.Link)
	return e.Err()
}

func newCinemaPane(api *client.API) *listPane[models.Movie] {
	return &listPane[models.Movie]{
		name:   store.Cinema,
		title:  "Cinema",
		schema: viewmodel.Cinema,
		label:  func(m models.Movie) string { return m.Title },
		blank:  func() models.Movie { return models.Movie{} },
		line: func(pal theme.Palette, m models.Movie) string {
			row := fmt.Sprintf("%s 🎬 %s", check(pal, m.Watched), m.Title)
			if m.Watched {
				if m.WatchedAt != nil {
					row += "  watched " + time.UnixMilli(*m.WatchedAt).Format("Jan 2, 2006")
				}
				return pal.Done.Render(row)
			}
			return row
		},
		detail: func(_ theme.Palette, m models.Movie) []string {
			return []string{
				"link:   " + m.Link,
				"poster: " + m.Poster,
				"added " + time.UnixMilli(m.AddedAt).Format("Jan 2, 2006"),
			}
		},
		edit: movieEditor,
		toggle: func(ctx context.Context, m models.Movie) error {
			if m.Watched {
				return api.MarkUnwatched(ctx, m.ID)
			}
			return api.MarkWatched(ctx, m.ID, 0)
		},
		remove: api.Cinema.Remove,
		forms: forms.New(validateMovieDraft, forms.Mutations[models.Movie]{
			Create: func(ctx context.Context, m models.Movie) (string, error) {
				return api.AddMovie(ctx, m.Title, m.Link)
			},
		}),
	}
}

func movieEditor(d models.Movie, _ *string) (*huh.Form, func() models.Movie) {
	title, link := d.Title, d.Link
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Description("The poster is looked up by title.").Value(&title),
			huh.NewInput().Title("Link").Placeholder("https://").Value(&link),
		),
	)
	return form, func() models.Movie {
		d.Title = strings.TrimSpace(title)
		d.Link = strings.TrimSpace(link)
		return d
	}
}
