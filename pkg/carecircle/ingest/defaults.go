package ingest

// Built-in Vietnamese healthcare vocabulary. configs/taxonomy.yaml carries the
// same lists plus optional groups (body parts, traditional medicine).

// DefaultStopwords returns the built-in Vietnamese stoplist.
func DefaultStopwords() []string {
	return []string{
		"và", "của", "có", "là", "được", "trong", "với", "để", "cho", "từ",
		"về", "theo", "như", "khi", "nếu", "mà", "hay", "hoặc", "nhưng", "vì",
		"do", "bởi", "tại", "trên", "dưới", "giữa", "sau", "trước", "này", "đó",
		"những", "các", "một", "hai", "ba", "nhiều", "ít",
	}
}

// DefaultTaxonomy returns a taxonomy loaded with the built-in vocabulary.
func DefaultTaxonomy() *Taxonomy {
	t := NewTaxonomy()

	t.AddTerms("disease", []string{
		"tiểu đường", "huyết áp", "tim mạch", "ung thư", "gan", "thận", "phổi",
		"dạ dày", "ruột", "xương khớp", "da liễu", "mắt", "tai mũi họng",
		"thần kinh", "tâm thần", "nội tiết", "sản phụ khoa", "nhi khoa",
		"lão khoa", "cấp cứu", "gây mê", "phẫu thuật", "covid-19", "cúm",
		"sốt xuất huyết", "sốt rét", "lao", "viêm gan", "đột quỵ",
		"nhồi máu cơ tim", "suy tim", "hen suyễn", "copd",
	})
	t.AddTerms("symptom", []string{
		"đau đầu", "sốt", "ho", "khó thở", "buồn nôn", "nôn", "tiêu chảy",
		"táo bón", "đau bụng", "đau ngực", "mệt mỏi", "chóng mặt", "mất ngủ",
		"lo âu", "trầm cảm", "đau cơ", "đau khớp", "phát ban", "ngứa", "sưng",
		"viêm", "nhiễm trùng",
	})
	t.AddTerms("medication", []string{
		"paracetamol", "aspirin", "ibuprofen", "amoxicillin", "metformin",
		"amlodipine", "losartan", "atorvastatin", "omeprazole", "insulin",
		"thuốc kháng sinh", "thuốc giảm đau", "thuốc hạ sốt", "thuốc ho",
		"thuốc dị ứng", "thuốc tim mạch", "thuốc tiểu đường", "vitamin",
	})
	t.AddTerms("procedure", []string{
		"xét nghiệm", "chụp x-quang", "siêu âm", "ct scan", "mri", "nội soi",
		"sinh thiết", "phẫu thuật", "tiêm", "truyền dịch", "thở máy",
		"lọc máu", "ghép tạng", "hóa trị", "xạ trị",
	})

	t.AddSpecialty("cardiology", []string{"tim", "mạch", "huyết áp", "nhồi máu", "đột quỵ", "tim mạch"})
	t.AddSpecialty("neurology", []string{"thần kinh", "não", "đột quỵ", "parkinson", "alzheimer", "động kinh"})
	t.AddSpecialty("oncology", []string{"ung thư", "ung bướu", "khối u", "hóa trị", "xạ trị", "ác tính"})
	t.AddSpecialty("pediatrics", []string{"trẻ em", "nhi", "em bé", "trẻ nhỏ", "vaccine trẻ em"})
	t.AddSpecialty("obstetrics", []string{"thai", "sinh", "sản", "phụ khoa", "mang thai", "sinh đẻ"})
	t.AddSpecialty("orthopedics", []string{"xương", "khớp", "gãy", "chấn thương", "cột sống"})
	t.AddSpecialty("gastroenterology", []string{"dạ dày", "ruột", "gan", "tiêu hóa", "đại tràng"})
	t.AddSpecialty("respiratory", []string{"phổi", "hô hấp", "hen", "copd", "viêm phổi", "ho"})
	t.AddSpecialty("endocrinology", []string{"tiểu đường", "tuyến giáp", "nội tiết", "hormone"})
	t.AddSpecialty("dermatology", []string{"da", "nấm", "viêm da", "dị ứng da", "da liễu"})
	t.AddSpecialty("psychiatry", []string{"tâm thần", "trầm cảm", "lo âu", "stress", "tâm lý"})

	t.AddContentType("guide", []string{"hướng dẫn", "cách", "làm thế nào"})
	t.AddContentType("research", []string{"nghiên cứu", "báo cáo", "phát hiện"})
	t.AddContentType("symptoms", []string{"triệu chứng", "dấu hiệu", "biểu hiện"})
	t.AddContentType("treatment", []string{"điều trị", "chữa", "phương pháp"})
	t.AddContentType("prevention", []string{"phòng ngừa", "dự phòng", "tránh"})

	t.AddURLType("service", []string{"dich-vu", "service"})
	t.AddURLType("doctor_profile", []string{"bac-si", "doctor"})

	t.SetRelevanceKeywords([]string{
		"y tế", "sức khỏe", "bệnh viện", "phòng khám", "bác sĩ", "điều dưỡng",
		"chẩn đoán", "điều trị", "phòng bệnh", "vaccine", "tiêm chủng",
	})
	t.SetContextWords([]string{"bệnh", "thuốc", "điều trị", "khám", "chữa", "y tế", "sức khỏe"})
	t.SetSeverityKeywords(
		[]string{"cấp cứu", "khẩn cấp", "nguy hiểm", "tử vong", "hôn mê", "sốc", "ngừng tim", "ngừng thở", "chảy máu", "đột ngột"},
		[]string{"mạn tính", "lâu dài", "suốt đời", "không khỏi", "kiểm soát", "theo dõi", "định kỳ"},
	)

	return t
}
