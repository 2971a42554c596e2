package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
)

// viewPages maps page routes to the HTML file served for them.
var viewPages = map[string]string{
	"/home":                "homeScreen.html",
	"/user/create":         "createUser.html",
	"/user/all":            "getAllUsers.html",
	"/user/search":         "searchByEmail.html",
	"/user/update":         "updateUser.html",
	"/user/delete":         "deleteUser.html",
	"/cycle/add":           "addCycle.html",
	"/cycle/all":           "getAllCycles.html",
	"/cycle/history":       "cycleHistory.html",
	"/daily-usage/add":     "addDailyUsage.html",
	"/daily-usage/all":     "getAllDailyUsages.html",
	"/daily-usage/history": "dailyUsageHistory.html",
}

func registerViews(router *mux.Router, dir string) {
	for path, file := range viewPages {
		router.HandleFunc(path, servePage(filepath.Join(dir, file))).Methods("GET")
	}
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))).Methods("GET")
	router.Handle("/", http.RedirectHandler("/home", http.StatusFound)).Methods("GET")
}

func servePage(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, file)
	}
}
