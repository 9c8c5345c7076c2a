package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/kv"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"
	"github.com/lintang-b-s/synthmap/pkg/server/rest/service"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type EditorService interface {
	Summary() service.ModelSummary
	SetName(name string)
	Save(ctx context.Context) (string, error)
	Load(ctx context.Context, name string) error
	Export(ctx context.Context) (string, *rawmap.Map, error)
	Import(ctx context.Context, name string) ([]error, error)

	CreateIntersection(center datastructure.Pt2D) synthetic.IntersectionID
	MoveIntersection(id synthetic.IntersectionID, center datastructure.Pt2D) error
	SetIntersectionLabel(id synthetic.IntersectionID, label string) error
	ToggleIntersectionType(id synthetic.IntersectionID) (rawmap.IntersectionType, error)
	RemoveIntersection(id synthetic.IntersectionID) error

	CreateRoad(i1, i2 synthetic.IntersectionID) (synthetic.RoadID, error)
	Road(id synthetic.RoadID) (service.RoadInfo, error)
	EditLanes(id synthetic.RoadID, spec string) error
	SwapLaneDirections(id synthetic.RoadID) error
	SetRoadLabel(id synthetic.RoadID, dir synthetic.Direction, label string) error
	RemoveRoad(id synthetic.RoadID) error

	CreateBuilding(center datastructure.Pt2D) synthetic.BuildingID
	MoveBuilding(id synthetic.BuildingID, center datastructure.Pt2D) error
	SetBuildingLabel(id synthetic.BuildingID, label string) error
	RemoveBuilding(id synthetic.BuildingID) error

	HitTest(ctx context.Context, p datastructure.Pt2D) service.HitResult
	NearestIntersections(ctx context.Context, lat, lon float64) ([]kv.NearbyIntersection, error)
}

type EditorHandler struct {
	svc     EditorService
	metrics *Metrics
}

func EditorRouter(r *chi.Mux, svc EditorService, m *Metrics) {
	handler := &EditorHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/api/editor", func(r chi.Router) {
			r.Get("/model", handler.Summary)
			r.Put("/model/name", handler.SetName)
			r.Post("/model/save", handler.Save)
			r.Post("/model/load", handler.Load)
			r.Post("/model/export", handler.Export)
			r.Post("/model/import", handler.Import)

			r.Post("/intersections", handler.CreateIntersection)
			r.Put("/intersections/{id}/center", handler.MoveIntersection)
			r.Put("/intersections/{id}/label", handler.SetIntersectionLabel)
			r.Post("/intersections/{id}/toggle-type", handler.ToggleIntersectionType)
			r.Delete("/intersections/{id}", handler.RemoveIntersection)

			r.Post("/roads", handler.CreateRoad)
			r.Get("/roads/{i1}/{i2}", handler.Road)
			r.Put("/roads/{i1}/{i2}/lanes", handler.EditLanes)
			r.Post("/roads/{i1}/{i2}/swap", handler.SwapLaneDirections)
			r.Put("/roads/{i1}/{i2}/label", handler.SetRoadLabel)
			r.Delete("/roads/{i1}/{i2}", handler.RemoveRoad)

			r.Post("/buildings", handler.CreateBuilding)
			r.Put("/buildings/{id}/center", handler.MoveBuilding)
			r.Put("/buildings/{id}/label", handler.SetBuildingLabel)
			r.Delete("/buildings/{id}", handler.RemoveBuilding)

			r.Get("/hit", handler.HitTest)
			r.Get("/nearest", handler.NearestIntersections)
		})
	})
}

// bindAndValidate decodes the body into data and runs the struct validation on it. On failure
// the error response has already been rendered.
func bindAndValidate(w http.ResponseWriter, r *http.Request, data render.Binder) bool {
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	return validateStruct(w, r, data)
}

func validateStruct(w http.ResponseWriter, r *http.Request, data any) bool {
	validate := validator.New()
	if err := validate.Struct(data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return false
	}
	return true
}

func (h *EditorHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.metrics.RecordOperation(op, err)
	render.Render(w, r, errRenderer(err))
}

func (h *EditorHandler) ok(w http.ResponseWriter, r *http.Request, op string, status int, v any) {
	h.metrics.RecordOperation(op, nil)
	if v == nil {
		render.NoContent(w, r)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, v)
}

func intParam(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil {
		return 0, errors.New("invalid " + key + ": " + chi.URLParam(r, key))
	}
	return v, nil
}

func roadParam(r *http.Request) (synthetic.RoadID, error) {
	i1, err := intParam(r, "i1")
	if err != nil {
		return synthetic.RoadID{}, err
	}
	i2, err := intParam(r, "i2")
	if err != nil {
		return synthetic.RoadID{}, err
	}
	return synthetic.NewRoadID(synthetic.IntersectionID(i1), synthetic.IntersectionID(i2)), nil
}

// PointRequest model info
//
//	@Description	a point in the local map frame, meters
type PointRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p *PointRequest) Bind(r *http.Request) error {
	return nil
}

func (p *PointRequest) Pt2D() datastructure.Pt2D {
	return datastructure.NewPt2D(*p.X, *p.Y)
}

type NameRequest struct {
	Name string `json:"name" validate:"required,excludesall=/\\"`
}

func (n *NameRequest) Bind(r *http.Request) error {
	return nil
}

type LabelRequest struct {
	Label string `json:"label"`
}

func (l *LabelRequest) Bind(r *http.Request) error {
	return nil
}

type RoadLabelRequest struct {
	Direction string `json:"direction" validate:"required,oneof=forwards backwards"`
	Label     string `json:"label"`
}

func (l *RoadLabelRequest) Bind(r *http.Request) error {
	return nil
}

type LanesRequest struct {
	Lanes string `json:"lanes" validate:"required"`
}

func (l *LanesRequest) Bind(r *http.Request) error {
	return nil
}

type CreateRoadRequest struct {
	I1 *int `json:"i1" validate:"required,gte=0"`
	I2 *int `json:"i2" validate:"required,gte=0"`
}

func (c *CreateRoadRequest) Bind(r *http.Request) error {
	return nil
}

type IDResponse struct {
	ID any `json:"id"`
}

func (h *EditorHandler) Summary(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.svc.Summary())
}

func (h *EditorHandler) SetName(w http.ResponseWriter, r *http.Request) {
	data := &NameRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	h.svc.SetName(data.Name)
	h.ok(w, r, "set_name", http.StatusOK, nil)
}

type PathResponse struct {
	Path string `json:"path"`
}

func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Save(r.Context())
	if err != nil {
		h.fail(w, r, "save", err)
		return
	}
	h.ok(w, r, "save", http.StatusOK, PathResponse{path})
}

func (h *EditorHandler) Load(w http.ResponseWriter, r *http.Request) {
	data := &NameRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	if err := h.svc.Load(r.Context(), data.Name); err != nil {
		h.fail(w, r, "load", err)
		return
	}
	h.ok(w, r, "load", http.StatusOK, h.svc.Summary())
}

type ExportResponse struct {
	Path          string `json:"path"`
	Roads         int    `json:"roads"`
	Intersections int    `json:"intersections"`
	Buildings     int    `json:"buildings"`
}

func (h *EditorHandler) Export(w http.ResponseWriter, r *http.Request) {
	path, raw, err := h.svc.Export(r.Context())
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}
	h.ok(w, r, "export", http.StatusOK, ExportResponse{
		Path:          path,
		Roads:         len(raw.Roads),
		Intersections: len(raw.Intersections),
		Buildings:     len(raw.Buildings),
	})
}

type ImportResponse struct {
	Model    service.ModelSummary `json:"model"`
	Warnings []string             `json:"warnings"`
}

func (h *EditorHandler) Import(w http.ResponseWriter, r *http.Request) {
	data := &NameRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	warnings, err := h.svc.Import(r.Context(), data.Name)
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}
	ww := make([]string, 0, len(warnings))
	for _, warn := range warnings {
		ww = append(ww, warn.Error())
	}
	h.ok(w, r, "import", http.StatusOK, ImportResponse{Model: h.svc.Summary(), Warnings: ww})
}

func (h *EditorHandler) CreateIntersection(w http.ResponseWriter, r *http.Request) {
	data := &PointRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	id := h.svc.CreateIntersection(data.Pt2D())
	h.ok(w, r, "create_intersection", http.StatusCreated, IDResponse{id})
}

func (h *EditorHandler) MoveIntersection(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	data := &PointRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	if err := h.svc.MoveIntersection(synthetic.IntersectionID(id), data.Pt2D()); err != nil {
		h.fail(w, r, "move_intersection", err)
		return
	}
	h.ok(w, r, "move_intersection", http.StatusOK, nil)
}

func (h *EditorHandler) SetIntersectionLabel(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	data := &LabelRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	if err := h.svc.SetIntersectionLabel(synthetic.IntersectionID(id), data.Label); err != nil {
		h.fail(w, r, "label_intersection", err)
		return
	}
	h.ok(w, r, "label_intersection", http.StatusOK, nil)
}

type ToggleResponse struct {
	ID   synthetic.IntersectionID `json:"id"`
	Type rawmap.IntersectionType  `json:"type"`
}

func (h *EditorHandler) ToggleIntersectionType(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	t, err := h.svc.ToggleIntersectionType(synthetic.IntersectionID(id))
	if err != nil {
		h.fail(w, r, "toggle_intersection", err)
		return
	}
	h.ok(w, r, "toggle_intersection", http.StatusOK, ToggleResponse{synthetic.IntersectionID(id), t})
}

func (h *EditorHandler) RemoveIntersection(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.svc.RemoveIntersection(synthetic.IntersectionID(id)); err != nil {
		h.fail(w, r, "remove_intersection", err)
		return
	}
	h.ok(w, r, "remove_intersection", http.StatusOK, nil)
}

func (h *EditorHandler) CreateRoad(w http.ResponseWriter, r *http.Request) {
	data := &CreateRoadRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	id, err := h.svc.CreateRoad(synthetic.IntersectionID(*data.I1), synthetic.IntersectionID(*data.I2))
	if err != nil {
		h.fail(w, r, "create_road", err)
		return
	}
	h.ok(w, r, "create_road", http.StatusCreated, IDResponse{id})
}

func (h *EditorHandler) Road(w http.ResponseWriter, r *http.Request) {
	id, err := roadParam(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	info, err := h.svc.Road(id)
	if err != nil {
		render.Render(w, r, errRenderer(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, info)
}

func (h *EditorHandler) EditLanes(w http.ResponseWriter, r *http.Request) {
	id, err := roadParam(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	data := &LanesRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	if err := h.svc.EditLanes(id, data.Lanes); err != nil {
		h.fail(w, r, "edit_lanes", err)
		return
	}
	h.ok(w, r, "edit_lanes", http.StatusOK, nil)
}

func (h *EditorHandler) SwapLaneDirections(w http.ResponseWriter, r *http.Request) {
	id, err := roadParam(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.svc.SwapLaneDirections(id); err != nil {
		h.fail(w, r, "swap_lanes", err)
		return
	}
	h.ok(w, r, "swap_lanes", http.StatusOK, nil)
}

func (h *EditorHandler) SetRoadLabel(w http.ResponseWriter, r *http.Request) {
	id, err := roadParam(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	data := &RoadLabelRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	dir, err := synthetic.ParseDirection(data.Direction)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.svc.SetRoadLabel(id, dir, data.Label); err != nil {
		h.fail(w, r, "label_road", err)
		return
	}
	h.ok(w, r, "label_road", http.StatusOK, nil)
}

func (h *EditorHandler) RemoveRoad(w http.ResponseWriter, r *http.Request) {
	id, err := roadParam(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.svc.RemoveRoad(id); err != nil {
		h.fail(w, r, "remove_road", err)
		return
	}
	h.ok(w, r, "remove_road", http.StatusOK, nil)
}

func (h *EditorHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	data := &PointRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	id := h.svc.CreateBuilding(data.Pt2D())
	h.ok(w, r, "create_building", http.StatusCreated, IDResponse{id})
}

func (h *EditorHandler) MoveBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	data := &PointRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	if err := h.svc.MoveBuilding(synthetic.BuildingID(id), data.Pt2D()); err != nil {
		h.fail(w, r, "move_building", err)
		return
	}
	h.ok(w, r, "move_building", http.StatusOK, nil)
}

func (h *EditorHandler) SetBuildingLabel(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	data := &LabelRequest{}
	if !bindAndValidate(w, r, data) {
		return
	}
	if err := h.svc.SetBuildingLabel(synthetic.BuildingID(id), data.Label); err != nil {
		h.fail(w, r, "label_building", err)
		return
	}
	h.ok(w, r, "label_building", http.StatusOK, nil)
}

func (h *EditorHandler) RemoveBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.svc.RemoveBuilding(synthetic.BuildingID(id)); err != nil {
		h.fail(w, r, "remove_building", err)
		return
	}
	h.ok(w, r, "remove_building", http.StatusOK, nil)
}

func floatQuery(r *http.Request, key string) (float64, error) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil {
		return 0, errors.New("invalid query parameter " + key)
	}
	return v, nil
}

func (h *EditorHandler) HitTest(w http.ResponseWriter, r *http.Request) {
	x, err := floatQuery(r, "x")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	y, err := floatQuery(r, "y")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.svc.HitTest(r.Context(), datastructure.NewPt2D(x, y)))
}

// Coord model info
//
//	@Description	gps coordinate
type Coord struct {
	Lat float64 `json:"lat" validate:"lte=90,gte=-90"`
	Lon float64 `json:"lon" validate:"lte=180,gte=-180"`
}

type NearbyIntersection struct {
	ID             int64   `json:"id"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Type           string  `json:"type"`
	Label          string  `json:"label,omitempty"`
	DistanceMeters float64 `json:"distance_meters"`
}

type NearestResponse struct {
	Intersections []NearbyIntersection `json:"intersections"`
}

func (h *EditorHandler) NearestIntersections(w http.ResponseWriter, r *http.Request) {
	lat, err := floatQuery(r, "lat")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	lon, err := floatQuery(r, "lon")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !validateStruct(w, r, Coord{Lat: lat, Lon: lon}) {
		return
	}

	found, err := h.svc.NearestIntersections(r.Context(), lat, lon)
	if err != nil {
		render.Render(w, r, errRenderer(err))
		return
	}
	resp := NearestResponse{Intersections: make([]NearbyIntersection, 0, len(found))}
	for _, i := range found {
		resp.Intersections = append(resp.Intersections, NearbyIntersection{
			ID:             i.ID,
			Lat:            i.Lat,
			Lon:            i.Lon,
			Type:           i.Type,
			Label:          i.Label,
			DistanceMeters: i.DistanceMeters,
		})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}
