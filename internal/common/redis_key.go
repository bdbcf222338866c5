package common

import "fmt"

func RedisKeyDrawing(drawingID string) string {
	return fmt.Sprintf("drawing:%s", drawingID)
}
