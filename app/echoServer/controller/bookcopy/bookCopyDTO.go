package bookcopy

type CreateBookCopiesReq struct {
	BookTitleID string  `json:"book_title_id" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	Condition   *string `json:"condition,omitempty" validate:"omitempty,oneof=NEW GOOD WORN DAMAGED"`
}

type UpdateBookCopyReq struct {
	Status    string  `json:"status" validate:"required,oneof=AVAILABLE BORROWED DAMAGED LOST"`
	Condition *string `json:"condition,omitempty" validate:"omitempty,oneof=NEW GOOD WORN DAMAGED"`
}
