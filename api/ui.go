package api

import (
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/matthewar/snekframe/store"
)

func (ws *WebServer) handleUIAlbums(c *gin.Context) {
	albums, err := ws.db.Albums()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("Error fetching albums: %v", err))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(ws.generateUIAlbumsHTML(albums)))
}

func (ws *WebServer) handleUIAlbumPhotos(c *gin.Context) {
	album := c.Param("album")
	photos, err := ws.db.PhotosInAlbum(album)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("Error fetching photos: %v", err))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(ws.generateUIPhotosHTML(photos)))
}

func (ws *WebServer) generateUIAlbumsHTML(albums []store.AlbumInfo) string {
	if len(albums) == 0 {
		return "<p class=\"empty-note\">No albums found. Add photo directories under the files directory and rescan.</p>"
	}

	out := "<div class=\"album-list\">\n"
	for _, album := range albums {
		encodedName := url.PathEscape(album.Name)

		out += "  <div class=\"album-item\">\n"
		out += fmt.Sprintf(
			"    <span class=\"album-name\" hx-get=\"/ui/albums/%s/photos\" hx-target=\"#photos\" hx-swap=\"innerHTML\">%s (%d)</span>\n",
			encodedName,
			escapeHTML(album.Name),
			album.NumPhotos,
		)
		out += fmt.Sprintf(
			"    <button class=\"album-select-btn\" "+
				"hx-put=\"/library/albums/%s/selected\" "+
				"hx-vals='{\"selected\": true}' "+
				"hx-ext=\"json-enc\" "+
				"hx-swap=\"none\">Show</button>\n",
			encodedName,
		)
		out += fmt.Sprintf(
			"    <button class=\"album-select-btn\" "+
				"hx-put=\"/library/albums/%s/selected\" "+
				"hx-vals='{\"selected\": false}' "+
				"hx-ext=\"json-enc\" "+
				"hx-swap=\"none\">Hide</button>\n",
			encodedName,
		)
		out += "  </div>\n"
	}
	out += "</div>"
	return out
}

func (ws *WebServer) generateUIPhotosHTML(photos []store.Photo) string {
	out := "<div class=\"photo-row\">\n"
	for _, photo := range photos {
		imageURL := fmt.Sprintf("/library/photos/%d/image", photo.ID)

		out += "  <div class=\"photo-item\">\n"
		out += fmt.Sprintf(
			"    <img src=\"%s\" alt=\"%s\" class=\"photo-thumbnail\" loading=\"lazy\" />\n",
			imageURL,
			escapeHTML(photo.Filename),
		)
		if photo.Caption != "" {
			out += fmt.Sprintf("    <span class=\"photo-caption\">%s</span>\n", escapeHTML(photo.Caption))
		}
		if photo.Selected {
			out += fmt.Sprintf(
				"    <button class=\"photo-play-btn\" "+
					"title=\"Play slideshow from this photo\" "+
					"hx-post=\"/slideshow/play/%d\" "+
					"hx-swap=\"none\">&#9654;</button>\n",
				photo.ID,
			)
		}
		out += "  </div>\n"
	}
	out += "</div>"
	return out
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
