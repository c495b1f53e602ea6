package misc

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// BindJSONStrict rejects fields the target struct does not declare; update
// payloads go through this so unknown fields never reach the store.
func BindJSONStrict(c *gin.Context, v interface{}) error {
	body := c.Request.Body
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
