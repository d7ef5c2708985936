package httpserver

type JoinRequest struct {
	ID       string `json:"id"`
	Nick     string `json:"nick"`
	Password string `json:"password"`
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type BoardRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CommentRequest struct {
	BoardNo uint   `json:"boardNo"`
	Content string `json:"content"`
}

type NickRequest struct {
	Nick string `json:"nick"`
}
