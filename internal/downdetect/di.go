package downdetect

import (
	"crmm/internal/features/search"
)

var downdetectService = &DowndetectService{
	search.GetSearchRepository(),
}
var downdetectController = &DowndetectController{
	downdetectService,
}

func GetDowndetectController() *DowndetectController {
	return downdetectController
}
