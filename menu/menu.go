package menu

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fastbreakfast/db"
	"fastbreakfast/models"
	"fastbreakfast/rdx"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

func cacheKey(menuID string) string {
	return fmt.Sprintf("menu:%s", menuID)
}

func GetMenu(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items, err := utils.FindAndDecode[models.MenuItem](r.Context(), db.MenuCollection, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch menu")
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

func GetMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	menuID := ps.ByName("id")

	// Check if the item is cached
	if cached, err := rdx.RdxGet(cacheKey(menuID)); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return
	}

	var item models.MenuItem
	if err := db.MenuCollection.FindOne(r.Context(), bson.M{"menuid": menuID}).Decode(&item); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	itemJSON, _ := json.Marshal(item)
	_ = rdx.RdxSet(cacheKey(menuID), string(itemJSON))

	utils.RespondWithJSON(w, http.StatusOK, item)
}

func AddMenuItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Image       string  `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if body.Name == "" || body.Description == "" || body.Price <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	item := models.MenuItem{
		MenuID:      utils.GenerateRandomString(14),
		Name:        body.Name,
		Description: body.Description,
		Price:       body.Price,
		Image:       body.Image,
		Available:   true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := db.MenuCollection.InsertOne(r.Context(), item); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add menu item")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Menu item added",
		"item":    item,
	})
}

func UpdateMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	menuID := ps.ByName("id")

	var body struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Image       string   `json:"image"`
		Available   *bool    `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	updateFields := bson.M{"updated_at": time.Now()}
	if body.Name != "" {
		updateFields["name"] = body.Name
	}
	if body.Description != "" {
		updateFields["description"] = body.Description
	}
	if body.Price != nil && *body.Price > 0 {
		updateFields["price"] = *body.Price
	}
	if body.Image != "" {
		updateFields["image"] = body.Image
	}
	if body.Available != nil {
		updateFields["available"] = *body.Available
	}

	result, err := db.MenuCollection.UpdateOne(r.Context(),
		bson.M{"menuid": menuID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	// Invalidate the cached copy
	_ = rdx.RdxDel(cacheKey(menuID))

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Menu item updated",
	})
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	menuID := ps.ByName("id")

	result, err := db.MenuCollection.DeleteOne(r.Context(), bson.M{"menuid": menuID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	_ = rdx.RdxDel(cacheKey(menuID))

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Menu item deleted"})
}
