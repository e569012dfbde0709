package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"fastbreakfast/db"
	"fastbreakfast/middleware"
	"fastbreakfast/models"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const loginTokenTTL = 12 * time.Hour

func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if input.Name == "" || input.Email == "" || input.Mobile == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	ctx := r.Context()

	// Check if user already exists
	err := db.UserCollection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": input.Email}, {"mobile": input.Mobile}},
	}).Err()
	if err == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Email or mobile already registered.")
		return
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password for %s: %v", input.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// Only the "user" role is granted at signup, whatever was requested.
	user := models.User{
		UserID:    "u" + utils.GenerateRandomString(10),
		Name:      input.Name,
		Email:     input.Email,
		Mobile:    input.Mobile,
		Password:  string(hashedPassword),
		Role:      "user",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user.Summary(),
	})
}

func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	// The identifier field accepts either the email or the mobile number.
	user, err := FindUserByIdentifier(r.Context(), input.Email)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	tokenString, err := middleware.GenerateToken(user, loginTokenTTL)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	_, _ = db.UserCollection.UpdateOne(r.Context(),
		bson.M{"userid": user.UserID},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   tokenString,
		"user":    user.Summary(),
	})
}

func GetMe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)

	var user models.User
	if err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// FindUserByIdentifier resolves a user by email or mobile number.
func FindUserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": identifier}, {"mobile": identifier}},
	}).Decode(&user)
	return user, err
}
