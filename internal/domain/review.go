package domain

// Review 상품 리뷰 레코드 (review/<item>_<writer>)
type Review struct {
	Title     string `json:"title"`
	Rate      string `json:"rate"`
	Content   string `json:"content"`
	ImgPath   string `json:"img_path"`
	ItemName  string `json:"item_name"`
	WriterID  string `json:"writer_id"`
	CreatedAt string `json:"created_at"`
}

// ReviewForm 리뷰 작성 요청
type ReviewForm struct {
	Title   string `json:"title" form:"title" validate:"required,max=100"`
	Rate    string `json:"rate" form:"rate" validate:"required,oneof=1 2 3 4 5"`
	Content string `json:"content" form:"content" validate:"required,max=5000"`
}

// ReviewEntry pairs a review with its storage key
type ReviewEntry struct {
	Key string `json:"key"`
	*Review
}
