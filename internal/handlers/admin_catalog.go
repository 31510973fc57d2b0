// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tutorialsite/internal/forms"
	"tutorialsite/internal/models"
	"tutorialsite/internal/render"
	"tutorialsite/internal/session"
)

const saveFailedText = "Failed to save. The name or slug may already be in use."

// formPage builds the PageData for a staff edit form. A non-empty errs
// adds the correction flash.
func formPage(title, section string, form any, errs map[string]string, data map[string]any) *render.PageData {
	pd := &render.PageData{
		Title:   title,
		Section: section,
		Form:    form,
		Errors:  errs,
		Data:    data,
	}
	if len(errs) > 0 {
		pd.Flashes = []session.Flash{{Level: session.FlashError, Message: "Please correct the errors below."}}
	}
	return pd
}

func saveFailed(pd *render.PageData) *render.PageData {
	pd.Flashes = []session.Flash{{Level: session.FlashError, Message: saveFailedText}}
	return pd
}

// --- Categories ---

// CategoriesList renders every category.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.catalog.Categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	a.renderer.Page(w, r, "admin_categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    map[string]any{"Items": items},
	})
}

// CategoryNew renders an empty category form.
func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "admin_category_form", formPage("New Category", "categories", forms.CategoryForm{}, nil,
		map[string]any{"IsNew": true}))
}

// CategoryCreate stores a new category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.NewCategoryForm(r)
	data := map[string]any{"IsNew": true}

	errs, err := a.checkCategory(ctx, form, uuid.Nil)
	if err != nil {
		slog.Error("check category failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if len(errs) > 0 {
		a.renderer.Page(w, r, "admin_category_form", formPage("New Category", "categories", form, errs, data))
		return
	}

	created, err := a.catalog.Categories.Upsert(ctx, &models.Category{
		Name:    form.Name,
		Slug:    form.Slug,
		Summary: form.Summary,
	})
	if err != nil {
		slog.Error("create category failed", "error", err, "slug", form.Slug)
		a.renderer.Page(w, r, "admin_category_form", saveFailed(formPage("New Category", "categories", form, nil, data)))
		return
	}

	a.invalidateCatalog(ctx, "category", created.ID, "create")
	a.sessions.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Category %q created.", created.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryEdit renders the form for an existing category.
func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Categories.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	form := forms.CategoryForm{Name: item.Name, Slug: item.Slug, Summary: item.Summary}
	a.renderer.Page(w, r, "admin_category_form", formPage("Edit Category", "categories", form, nil,
		map[string]any{"Item": item}))
}

// CategoryUpdate saves changes to an existing category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Categories.FindByID(ctx, id)
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	form := forms.NewCategoryForm(r)
	data := map[string]any{"Item": item}
	errs, err := a.checkCategory(ctx, form, id)
	if err != nil {
		slog.Error("check category failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if len(errs) > 0 {
		a.renderer.Page(w, r, "admin_category_form", formPage("Edit Category", "categories", form, errs, data))
		return
	}

	updated, err := a.catalog.Categories.Update(ctx, &models.Category{
		ID:      id,
		Name:    form.Name,
		Slug:    form.Slug,
		Summary: form.Summary,
	})
	if err != nil {
		slog.Error("update category failed", "error", err, "id", id)
		a.renderer.Page(w, r, "admin_category_form", saveFailed(formPage("Edit Category", "categories", form, nil, data)))
		return
	}
	if updated == nil {
		notFound(a.renderer, w, r)
		return
	}

	a.invalidateCatalog(ctx, "category", id, "update")
	a.sessions.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Category %q updated.", updated.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryDelete removes a category with all of its series and tutorials.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Categories.FindByID(ctx, id)
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	if err := a.catalog.Categories.Delete(ctx, id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}

	a.invalidateCatalog(ctx, "category", id, "delete")
	a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("Category %q deleted.", item.Name))
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// checkCategory validates a category form. Category slugs share the URL
// namespace with tutorials, so a slug owned by a tutorial is refused.
func (a *Admin) checkCategory(ctx context.Context, form forms.CategoryForm, self uuid.UUID) (map[string]string, error) {
	errs := forms.FieldErrors(forms.Validate(form))
	if errs["slug"] != "" {
		return errs, nil
	}
	if errs == nil {
		errs = map[string]string{}
	}

	other, err := a.catalog.Categories.FindBySlug(ctx, form.Slug)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != self {
		errs["slug"] = "A category with this slug already exists."
		return errs, nil
	}

	tut, err := a.catalog.Tutorials.FindBySlug(ctx, form.Slug)
	if err != nil {
		return nil, err
	}
	if tut != nil {
		errs["slug"] = "A tutorial already uses this slug."
	}
	return errs, nil
}

// --- Series ---

// SeriesList renders every series with the name of its category.
func (a *Admin) SeriesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := a.catalog.Series.List(ctx)
	if err != nil {
		slog.Error("list series failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	categories, err := a.catalog.Categories.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	a.renderer.Page(w, r, "admin_series", &render.PageData{
		Title:   "Series",
		Section: "series",
		Data: map[string]any{
			"Items":         items,
			"CategoryNames": names,
		},
	})
}

// SeriesNew renders an empty series form.
func (a *Admin) SeriesNew(w http.ResponseWriter, r *http.Request) {
	form := forms.SeriesForm{CategoryID: r.URL.Query().Get("category")}
	a.renderSeriesForm(w, r, nil, form, nil, false)
}

// SeriesCreate stores a new series.
func (a *Admin) SeriesCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.NewSeriesForm(r)

	errs, categoryID, err := a.checkSeries(ctx, form, uuid.Nil)
	if err != nil {
		slog.Error("check series failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if len(errs) > 0 {
		a.renderSeriesForm(w, r, nil, form, errs, false)
		return
	}

	created, err := a.catalog.Series.Upsert(ctx, &models.Series{
		Name:       form.Name,
		Slug:       form.Slug,
		Summary:    form.Summary,
		CategoryID: categoryID,
	})
	if err != nil {
		slog.Error("create series failed", "error", err, "slug", form.Slug)
		a.renderSeriesForm(w, r, nil, form, nil, true)
		return
	}

	a.invalidateCatalog(ctx, "series", created.ID, "create")
	a.sessions.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Series %q created.", created.Name))
	http.Redirect(w, r, "/admin/series", http.StatusSeeOther)
}

// SeriesEdit renders the form for an existing series.
func (a *Admin) SeriesEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Series.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find series failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	form := forms.SeriesForm{
		Name:       item.Name,
		Slug:       item.Slug,
		Summary:    item.Summary,
		CategoryID: item.CategoryID.String(),
	}
	a.renderSeriesForm(w, r, item, form, nil, false)
}

// SeriesUpdate saves changes to an existing series.
func (a *Admin) SeriesUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Series.FindByID(ctx, id)
	if err != nil {
		slog.Error("find series failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	form := forms.NewSeriesForm(r)
	errs, categoryID, err := a.checkSeries(ctx, form, id)
	if err != nil {
		slog.Error("check series failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if len(errs) > 0 {
		a.renderSeriesForm(w, r, item, form, errs, false)
		return
	}

	updated, err := a.catalog.Series.Update(ctx, &models.Series{
		ID:         id,
		Name:       form.Name,
		Slug:       form.Slug,
		Summary:    form.Summary,
		CategoryID: categoryID,
	})
	if err != nil {
		slog.Error("update series failed", "error", err, "id", id)
		a.renderSeriesForm(w, r, item, form, nil, true)
		return
	}
	if updated == nil {
		notFound(a.renderer, w, r)
		return
	}

	a.invalidateCatalog(ctx, "series", id, "update")
	a.sessions.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Series %q updated.", updated.Name))
	http.Redirect(w, r, "/admin/series", http.StatusSeeOther)
}

// SeriesDelete removes a series with all of its tutorials.
func (a *Admin) SeriesDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Series.FindByID(ctx, id)
	if err != nil {
		slog.Error("find series failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	if err := a.catalog.Series.Delete(ctx, id); err != nil {
		slog.Error("delete series failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}

	a.invalidateCatalog(ctx, "series", id, "delete")
	a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("Series %q deleted.", item.Name))
	http.Redirect(w, r, "/admin/series", http.StatusSeeOther)
}

func (a *Admin) renderSeriesForm(w http.ResponseWriter, r *http.Request, item *models.Series, form forms.SeriesForm, errs map[string]string, failed bool) {
	categories, err := a.catalog.Categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	title := "Edit Series"
	if item == nil {
		title = "New Series"
	}
	pd := formPage(title, "series", form, errs, map[string]any{
		"IsNew":      item == nil,
		"Item":       item,
		"Categories": categories,
	})
	if failed {
		saveFailed(pd)
	}
	a.renderer.Page(w, r, "admin_series_form", pd)
}

// checkSeries validates a series form and resolves its category.
func (a *Admin) checkSeries(ctx context.Context, form forms.SeriesForm, self uuid.UUID) (map[string]string, uuid.UUID, error) {
	errs := forms.FieldErrors(forms.Validate(form))
	if errs == nil {
		errs = map[string]string{}
	}

	if errs["slug"] == "" {
		other, err := a.catalog.Series.FindBySlug(ctx, form.Slug)
		if err != nil {
			return nil, uuid.Nil, err
		}
		if other != nil && other.ID != self {
			errs["slug"] = "A series with this slug already exists."
		}
	}

	var categoryID uuid.UUID
	if errs["category_id"] == "" {
		categoryID = uuid.MustParse(form.CategoryID)
		cat, err := a.catalog.Categories.FindByID(ctx, categoryID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		if cat == nil {
			errs["category_id"] = "Select a valid choice."
		}
	}
	return errs, categoryID, nil
}

// --- Tutorials ---

// TutorialsList renders every tutorial, newest first, with its series.
func (a *Admin) TutorialsList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := a.catalog.Tutorials.List(ctx)
	if err != nil {
		slog.Error("list tutorials failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	series, err := a.catalog.Series.List(ctx)
	if err != nil {
		slog.Error("list series failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	names := make(map[uuid.UUID]string, len(series))
	for _, s := range series {
		names[s.ID] = s.Name
	}

	a.renderer.Page(w, r, "admin_tutorials", &render.PageData{
		Title:   "Tutorials",
		Section: "tutorials",
		Data: map[string]any{
			"Items":       items,
			"SeriesNames": names,
		},
	})
}

// TutorialNew renders an empty tutorial form, publishing now by default.
func (a *Admin) TutorialNew(w http.ResponseWriter, r *http.Request) {
	form := forms.TutorialForm{
		SeriesID:  r.URL.Query().Get("series"),
		Published: time.Now().Format(forms.PublishedLayout),
	}
	a.renderTutorialForm(w, r, nil, form, nil, false)
}

// TutorialCreate stores a new tutorial.
func (a *Admin) TutorialCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := forms.NewTutorialForm(r)

	errs, seriesID, err := a.checkTutorial(ctx, form, uuid.Nil)
	if err != nil {
		slog.Error("check tutorial failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if len(errs) > 0 {
		a.renderTutorialForm(w, r, nil, form, errs, false)
		return
	}

	created, err := a.catalog.Tutorials.Upsert(ctx, &models.Tutorial{
		Title:       form.Title,
		Slug:        form.Slug,
		Content:     form.Content,
		PublishedAt: form.PublishedAt(time.Now()),
		SeriesID:    seriesID,
	})
	if err != nil {
		slog.Error("create tutorial failed", "error", err, "slug", form.Slug)
		a.renderTutorialForm(w, r, nil, form, nil, true)
		return
	}

	a.invalidateCatalog(ctx, "tutorial", created.ID, "create")
	a.sessions.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Tutorial %q created.", created.Title))
	http.Redirect(w, r, "/admin/tutorials", http.StatusSeeOther)
}

// TutorialEdit renders the form for an existing tutorial.
func (a *Admin) TutorialEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Tutorials.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find tutorial failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	form := forms.TutorialForm{
		Title:     item.Title,
		Slug:      item.Slug,
		SeriesID:  item.SeriesID.String(),
		Published: item.PublishedAt.In(time.Local).Format(forms.PublishedLayout),
		Content:   item.Content,
	}
	a.renderTutorialForm(w, r, item, form, nil, false)
}

// TutorialUpdate saves changes to an existing tutorial. A change to the
// body alone only touches the tutorial's own cached page.
func (a *Admin) TutorialUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Tutorials.FindByID(ctx, id)
	if err != nil {
		slog.Error("find tutorial failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	form := forms.NewTutorialForm(r)
	errs, seriesID, err := a.checkTutorial(ctx, form, id)
	if err != nil {
		slog.Error("check tutorial failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}
	if len(errs) > 0 {
		a.renderTutorialForm(w, r, item, form, errs, false)
		return
	}

	updated, err := a.catalog.Tutorials.Update(ctx, &models.Tutorial{
		ID:          id,
		Title:       form.Title,
		Slug:        form.Slug,
		Content:     form.Content,
		PublishedAt: form.PublishedAt(item.PublishedAt),
		SeriesID:    seriesID,
	})
	if err != nil {
		slog.Error("update tutorial failed", "error", err, "id", id)
		a.renderTutorialForm(w, r, item, form, nil, true)
		return
	}
	if updated == nil {
		notFound(a.renderer, w, r)
		return
	}

	if sameNavigation(item, updated) {
		a.invalidateTutorialPage(ctx, id, updated.Slug)
	} else {
		a.invalidateCatalog(ctx, "tutorial", id, "update")
	}
	a.sessions.AddFlash(w, r, session.FlashSuccess, fmt.Sprintf("Tutorial %q updated.", updated.Title))
	http.Redirect(w, r, "/admin/tutorials", http.StatusSeeOther)
}

// TutorialDelete removes a tutorial.
func (a *Admin) TutorialDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	item, err := a.catalog.Tutorials.FindByID(ctx, id)
	if err != nil {
		slog.Error("find tutorial failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}
	if item == nil {
		notFound(a.renderer, w, r)
		return
	}

	if err := a.catalog.Tutorials.Delete(ctx, id); err != nil {
		slog.Error("delete tutorial failed", "error", err, "id", id)
		serverError(a.renderer, w, r)
		return
	}

	a.invalidateCatalog(ctx, "tutorial", id, "delete")
	a.sessions.AddFlash(w, r, session.FlashInfo, fmt.Sprintf("Tutorial %q deleted.", item.Title))
	http.Redirect(w, r, "/admin/tutorials", http.StatusSeeOther)
}

func (a *Admin) renderTutorialForm(w http.ResponseWriter, r *http.Request, item *models.Tutorial, form forms.TutorialForm, errs map[string]string, failed bool) {
	series, err := a.catalog.Series.List(r.Context())
	if err != nil {
		slog.Error("list series failed", "error", err)
		serverError(a.renderer, w, r)
		return
	}

	title := "Edit Tutorial"
	if item == nil {
		title = "New Tutorial"
	}
	pd := formPage(title, "tutorials", form, errs, map[string]any{
		"IsNew":  item == nil,
		"Item":   item,
		"Series": series,
	})
	if failed {
		saveFailed(pd)
	}
	a.renderer.Page(w, r, "admin_tutorial_form", pd)
}

// checkTutorial validates a tutorial form and resolves its series. A slug
// owned by a category is refused, since categories win on lookup.
func (a *Admin) checkTutorial(ctx context.Context, form forms.TutorialForm, self uuid.UUID) (map[string]string, uuid.UUID, error) {
	errs := forms.FieldErrors(forms.Validate(form))
	if errs == nil {
		errs = map[string]string{}
	}

	if errs["slug"] == "" {
		other, err := a.catalog.Tutorials.FindBySlug(ctx, form.Slug)
		if err != nil {
			return nil, uuid.Nil, err
		}
		if other != nil && other.ID != self {
			errs["slug"] = "A tutorial with this slug already exists."
		} else {
			cat, err := a.catalog.Categories.FindBySlug(ctx, form.Slug)
			if err != nil {
				return nil, uuid.Nil, err
			}
			if cat != nil {
				errs["slug"] = "A category already uses this slug."
			}
		}
	}

	var seriesID uuid.UUID
	if errs["series_id"] == "" {
		seriesID = uuid.MustParse(form.SeriesID)
		sr, err := a.catalog.Series.FindByID(ctx, seriesID)
		if err != nil {
			return nil, uuid.Nil, err
		}
		if sr == nil {
			errs["series_id"] = "Select a valid choice."
		}
	}
	return errs, seriesID, nil
}

// sameNavigation reports whether an edit left everything that other pages
// show about a tutorial unchanged.
func sameNavigation(before, after *models.Tutorial) bool {
	return before.Title == after.Title &&
		before.Slug == after.Slug &&
		before.SeriesID == after.SeriesID &&
		before.PublishedAt.Equal(after.PublishedAt)
}
