package reservation

type CreateReservationReq struct {
	BookTitleID string `json:"book_title_id" validate:"required"`
}

type UpdateReservationReq struct {
	BookTitleID *string `json:"book_title_id,omitempty"`
	BookCopyID  *string `json:"book_copy_id,omitempty"`
}
