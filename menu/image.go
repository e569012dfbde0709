package menu

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"fastbreakfast/db"
	"fastbreakfast/rdx"
	"fastbreakfast/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const menuPicDir = "static/menupic"

// UploadMenuImage accepts a multipart image, writes it plus a 200px
// thumbnail under static/menupic, and points the item's image field at it.
func UploadMenuImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	menuID := ps.ByName("id")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file required")
		return
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unsupported image format")
		return
	}

	if err := os.MkdirAll(menuPicDir, 0755); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	filename := fmt.Sprintf("%s-%d.jpg", menuID, time.Now().UnixNano())
	fullPath := filepath.Join(menuPicDir, filename)
	thumbPath := filepath.Join(menuPicDir, "thumb-"+filename)

	if err := imaging.Save(img, fullPath); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	thumb := imaging.Resize(img, 200, 0, imaging.Lanczos) // maintain aspect ratio
	if err := imaging.Save(thumb, thumbPath); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store thumbnail")
		return
	}

	imageURL := "/static/menupic/" + filename
	result, err := db.MenuCollection.UpdateOne(r.Context(),
		bson.M{"menuid": menuID},
		bson.M{"$set": bson.M{"image": imageURL, "updated_at": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	_ = rdx.RdxDel(cacheKey(menuID))

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Image uploaded",
		"image":   imageURL,
	})
}
