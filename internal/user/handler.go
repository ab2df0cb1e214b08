package user

import (
	"net/http"
	"strings"
	"time"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/transport"
	"miaumarket-be/internal/utils"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	FirstName       string `json:"Nombre"`
	LastName        string `json:"Apellido"`
	Email           string `json:"Email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
	Phone           string `json:"Telefono"`
	Address         string `json:"Address"`
	City            string `json:"City"`
	BirthDate       string `json:"BirthDate"`
}

type loginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	FirstName       *string `json:"Nombre"`
	LastName        *string `json:"Apellido"`
	Phone           *string `json:"Telefono"`
	Address         *string `json:"Address"`
	City            *string `json:"City"`
	CurrentPassword string  `json:"password_actual"`
	NewPassword     string  `json:"password_nueva"`
}

type userResponse struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"Nombre"`
	LastName  string    `json:"Apellido"`
	Email     string    `json:"Email"`
	Phone     string    `json:"Telefono"`
	Address   string    `json:"Address"`
	City      string    `json:"City"`
	BirthDate string    `json:"BirthDate"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"FechaRegistro"`
}

func toResponse(u *User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		City:      u.City,
		BirthDate: u.BirthDate.Format(dateLayout),
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var birth time.Time
	if strings.TrimSpace(req.BirthDate) != "" {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(req.BirthDate))
		if err != nil {
			fields := apperr.FieldErrors{}
			fields.Add("BirthDate", "formato de fecha inválido, usa AAAA-MM-DD")
			transport.WriteError(w, r, fields.Err())
			return
		}
		birth = parsed
	}

	u, err := h.svc.Register(r.Context(), RegisterParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Phone:           req.Phone,
		Address:         req.Address,
		City:            req.City,
		BirthDate:       birth,
	})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, toResponse(u))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toResponse(u),
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	u, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), UpdateProfileParams{
		UserID:          userID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Address:         req.Address,
		City:            req.City,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, toResponse(u))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	transport.WriteJSON(w, http.StatusOK, out)
}
