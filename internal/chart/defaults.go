package chart

// DefaultData is shown when no chart configuration has been stored yet.
const DefaultData = `Pelayanan Kesehatan Ibu Hamil=100
Pelayanan Kesehatan Ibu Bersalin=100
Pelayanan Kesehatan Bayi Baru Lahir=100
Pelayanan Kesehatan Balita=100
Pelayanan Kesehatan pada Usia Pendidikan Dasar=100
Pelayanan Kesehatan pada Usia Produktif=100
Pelayanan Kesehatan pada Usia Lanjut=100
Pelayanan Kesehatan Penderita Hipertensi=100
Pelayanan Kesehatan Penderita Diabetes Melitus=100
Pelayanan Kesehatan Orang dengan Gangguan Jiwa Berat=100
Pelayanan Kesehatan Orang Terduga Tuberkulosis=100
Pelayanan Kesehatan Orang dengan Risiko Terinfeksi HIV=100`

// DefaultDataset is DefaultData already parsed.
func DefaultDataset() Dataset {
	return Parse(DefaultData)
}
