// Package auth issues the JWTs the role gates consume. The portal treats
// account approval workflows as out of scope; this is login/register only.
package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"tengri/db"
	"tengri/globals"
	"tengri/middleware"
	"tengri/models"
	"tengri/utils"
)

const tokenTTL = 12 * time.Hour

func LoginHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds models.User
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	var storedUser models.User
	err := db.UsersCollection.FindOne(r.Context(), bson.M{"username": creds.Username}).Decode(&storedUser)
	if err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedUser.Password), []byte(creds.Password)); err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	tokenString, err := issueToken(storedUser)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	_, err = db.UsersCollection.UpdateOne(
		context.TODO(),
		bson.M{"userid": storedUser.UserID},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	)
	if err != nil {
		log.Printf("[AUTH] last_login update failed for %s: %v", storedUser.UserID, err)
	}

	utils.SendResponse(w, http.StatusOK, map[string]any{
		"token":  tokenString,
		"userid": storedUser.UserID,
		"roles":  storedUser.Role,
	}, "Login successful", nil)
}

func RegisterHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if user.Username == "" || user.Password == "" {
		http.Error(w, "Missing username or password", http.StatusBadRequest)
		return
	}

	var existing models.User
	err := db.UsersCollection.FindOne(r.Context(), bson.M{"username": user.Username}).Decode(&existing)
	if err == nil {
		http.Error(w, "User already exists", http.StatusConflict)
		return
	} else if err != mongo.ErrNoDocuments {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user.UserID = utils.GenerateRandomString(16)
	user.Password = string(hashed)
	if len(user.Role) == 0 {
		user.Role = []string{models.RoleCustomer}
	}
	user.CreatedAt = time.Now()

	if _, err := db.UsersCollection.InsertOne(r.Context(), user); err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	utils.SendResponse(w, http.StatusCreated, map[string]any{
		"userid": user.UserID,
	}, "Registered", nil)
}

func issueToken(u models.User) (string, error) {
	claims := &middleware.Claims{
		Username: u.Username,
		UserID:   u.UserID,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}
