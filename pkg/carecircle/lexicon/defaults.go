package lexicon

// Default returns the built-in Vietnamese medical lexicon. configs/lexicon.yaml
// ships the same entries in file form.
func Default() *Lexicon {
	lex := New()

	for _, a := range []Annotation{
		{"HA", "huyết áp"},
		{"ĐTĐ", "đái tháo đường"},
		{"COPD", "bệnh phổi tắc nghẽn mạn tính"},
		{"HIV", "virus gây suy giảm miễn dịch"},
		{"AIDS", "hội chứng suy giảm miễn dịch mắc phải"},
		{"TB", "lao phổi"},
		{"CVD", "bệnh tim mạch"},
		{"BMI", "chỉ số khối cơ thể"},
		{"WHO", "Tổ chức Y tế Thế giới"},
		{"FDA", "Cục Quản lý Thực phẩm và Dược phẩm"},
		{"ICU", "khoa hồi sức tích cực"},
		{"ER", "khoa cấp cứu"},
		{"CT", "chụp cắt lớp vi tính"},
		{"MRI", "chụp cộng hưởng từ"},
		{"ECG", "điện tim"},
		{"EEG", "điện não đồ"},
	} {
		lex.AddAbbreviation(a.Term, a.Description)
	}

	lex.AddSynonymGroup("đái tháo đường", []string{"bệnh tiểu đường"})
	lex.AddSynonymGroup("tăng huyết áp", []string{"cao huyết áp"})
	lex.AddSynonymGroup("ung bướu", []string{"ung thư"})
	lex.AddSynonymGroup("viêm phế quản", []string{"viêm phổi"})
	lex.AddSynonymGroup("nhồi máu cơ tim", []string{"đau tim"})
	lex.AddSynonymGroup("đột quỵ", []string{"tai biến"})
	lex.AddSynonymGroup("bệnh thận mạn", []string{"suy thận"})
	lex.AddSynonymGroup("bệnh gan", []string{"viêm gan"})
	lex.AddSynonymGroup("osteoporosis", []string{"loãng xương"})
	lex.AddSynonymGroup("rối loạn trầm cảm", []string{"trầm cảm"})

	for _, u := range []Annotation{
		{"mg/dl", "milligram trên deciliter"},
		{"mmHg", "milimét thủy ngân"},
		{"bpm", "nhịp mỗi phút"},
		{"°C", "độ Celsius"},
		{"ml", "mililít"},
		{"kg", "kilogram"},
		{"cm", "centimet"},
		{"m²", "mét vuông"},
	} {
		lex.AddUnit(u.Term, u.Description)
	}

	return lex
}
