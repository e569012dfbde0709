package auth

import (
	"encoding/json"
	"net/http"

	"fastbreakfast/db"
	"fastbreakfast/models"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Admin user management.

func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := utils.FindAndDecode[models.User](r.Context(), db.UserCollection, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	utils.RespondWithJSON(w, http.StatusOK, summaries)
}

func UpdateUserRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if body.Role != "user" && body.Role != "admin" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	res := db.UserCollection.FindOneAndUpdate(r.Context(),
		bson.M{"userid": ps.ByName("id")},
		bson.M{"$set": bson.M{"role": body.Role}},
	)
	var user models.User
	if err := res.Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	user.Role = body.Role

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "User role updated successfully",
		"user":    user.Summary(),
	})
}

func DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res := db.UserCollection.FindOneAndDelete(r.Context(), bson.M{"userid": ps.ByName("id")})
	if err := res.Err(); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
