package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/marketfront/internal/models"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// signupPayload defines the structure for registration requests.
type signupPayload struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload signupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.CreateUser(payload.Name, payload.Email, payload.Phone, payload.Password)
	if err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	token, err := s.generateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: &user})
}

// loginPayload defines the structure for login requests.
type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.generateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: &user})
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.AllProducts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	products, err := s.store.ProductsByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list user's products")
		writeError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// createProductPayload defines the structure for listing creation requests.
type createProductPayload struct {
	UserID      string  `json:"user_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=2"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Image       string  `json:"image" validate:"required,url"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload createProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "Cannot list products for another user")
		return
	}

	product, err := s.store.InsertProduct(models.NewProduct{
		UserID:      payload.UserID,
		Name:        payload.Name,
		Price:       payload.Price,
		Image:       payload.Image,
		Description: payload.Description,
		Category:    payload.Category,
		Location:    payload.Location,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", payload.UserID).Msg("Failed to create product")
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	s.hub.Notify("product.created", product)
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	id := chi.URLParam(r, "id")
	product, err := s.store.ProductByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if product.SellerID != claims.UserID {
		writeError(w, http.StatusForbidden, "Cannot delete another user's product")
		return
	}

	if err := s.store.DeleteProduct(id); err != nil {
		log.Error().Err(err).Str("product_id", id).Msg("Failed to delete product")
		writeError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	s.hub.Notify("product.deleted", map[string]string{"id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
