package auth

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"fastbreakfast/middleware"
	"fastbreakfast/notify"
	"fastbreakfast/rdx"
	"fastbreakfast/utils"

	"github.com/julienschmidt/httprouter"
)

const (
	otpTTL      = 5 * time.Minute
	otpTokenTTL = 7 * 24 * time.Hour
)

var phoneRe = regexp.MustCompile(`^[0-9]{10,}$`)

func GenerateOTP(length int) string {
	digits := "0123456789"
	var otp strings.Builder
	for i := 0; i < length; i++ {
		otp.WriteByte(digits[rand.Intn(len(digits))])
	}
	return otp.String()
}

type otpInput struct {
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	EmailOrPhone string `json:"emailOrPhone"`
	OTP          string `json:"otp"`
}

func (in otpInput) identifier() string {
	if in.Email != "" {
		return in.Email
	}
	if in.Phone != "" {
		return in.Phone
	}
	return in.EmailOrPhone
}

func SendOtp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input otpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := input.identifier()
	if identifier == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email or phone number required")
		return
	}

	if _, err := FindUserByIdentifier(r.Context(), identifier); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	otp := GenerateOTP(6)
	if err := rdx.SetWithExpiry("otp:"+identifier, otp, otpTTL); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store OTP")
		return
	}

	// Delivery is best-effort on both channels.
	if strings.Contains(identifier, "@") {
		body := fmt.Sprintf("Your OTP is %s\n\nThis code expires in 5 minutes.", otp)
		if err := notify.SendEmail(identifier, "Your Login OTP - Fast Breakfast", body); err != nil {
			log.Printf("OTP email to %s failed: %v", identifier, err)
		}
	}
	if phoneRe.MatchString(identifier) {
		body := fmt.Sprintf("Your Fast Breakfast OTP is %s. It expires in 5 minutes.", otp)
		if err := notify.SendSMS(identifier, body); err != nil {
			log.Printf("OTP sms to %s failed: %v", identifier, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "OTP sent successfully",
	})
}

func VerifyOtp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input otpInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := input.identifier()
	storedOTP, err := rdx.RdxGet("otp:" + identifier)
	if err != nil || storedOTP == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "No OTP found or expired")
		return
	}

	if storedOTP != input.OTP {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid OTP")
		return
	}

	_ = rdx.RdxDel("otp:" + identifier)

	user, err := FindUserByIdentifier(r.Context(), identifier)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	tokenString, err := middleware.GenerateToken(user, otpTokenTTL)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"token":   tokenString,
		"user":    user.Summary(),
	})
}
