package handlers

import "net/http"

// HomeHandler renders the public landing page
func HomeHandler(renderer PageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Render(w, r, http.StatusOK, "home", "Home", nil)
	}
}
