package repository

import "github.com/shiva/campusq/internal/model"

// SeedFacilities returns the campus directory loaded at startup.
// A fresh copy is built on every call.
func SeedFacilities() []model.Facility {
	return []model.Facility{
		{
			ID:   "hanyang_plaza",
			Name: "학생복지관 (한양플라자)",
			Type: model.FacilityCafeteria,
			Location: model.Location{
				Lat: 37.5575, Lng: 127.0469, Radius: 50,
				Address:  "한양대학교 학생복지관(한양플라자) 3층",
				Building: "105",
			},
			Capacity:       300,
			AvgServiceTime: 3,
			AvgCongestion:  3,
			Corners: []model.Corner{
				{ID: "hp_korean", Name: "한식코너", Type: "한식", Menu: "된장찌개 + 제육볶음", Price: intPtr(5500), Congestion: 4, WaitTime: 12, CurrentQueue: 8},
				{ID: "hp_western", Name: "양식코너", Type: "양식", Menu: "치킨커틀렛 + 샐러드", Price: intPtr(6000), Congestion: 2, WaitTime: 5, CurrentQueue: 3},
				{ID: "hp_noodle", Name: "면류코너", Type: "면류", Menu: "짜장면", Price: intPtr(4500), Congestion: 3, WaitTime: 8, CurrentQueue: 5},
			},
		},
		{
			ID:   "dormitory_cafeteria",
			Name: "기숙사 식당",
			Type: model.FacilityCafeteria,
			Location: model.Location{
				Lat: 37.5580, Lng: 127.0450, Radius: 50,
				Address:  "한양대학교 기숙사 1층",
				Building: "기숙사",
			},
			Capacity:       200,
			AvgServiceTime: 4,
			AvgCongestion:  2,
			Corners: []model.Corner{
				{ID: "dorm_a", Name: "A코너", Type: "일반식", Menu: "김치볶음밥 + 계란후라이", Price: intPtr(4500), Congestion: 2, WaitTime: 6, CurrentQueue: 4},
				{ID: "dorm_b", Name: "B코너", Type: "특식", Menu: "돈까스 정식", Price: intPtr(5500), Congestion: 3, WaitTime: 10, CurrentQueue: 7},
			},
		},
		{
			ID:   "central_library",
			Name: "중앙도서관",
			Type: model.FacilityLibrary,
			Location: model.Location{
				Lat: 37.5565, Lng: 127.0475, Radius: 100,
				Address:  "한양대학교 중앙도서관",
				Building: "도서관",
			},
			Capacity:       500,
			AvgServiceTime: 0,
			AvgCongestion:  4,
			Corners: []model.Corner{
				{ID: "lib_1f", Name: "1층 열람실", Type: "열람실", Congestion: 4, Available: intPtr(20), Capacity: intPtr(120)},
				{ID: "lib_2f", Name: "2층 자유석", Type: "자유석", Congestion: 5, Available: intPtr(5), Capacity: intPtr(150)},
				{ID: "lib_3f", Name: "3층 노트북실", Type: "노트북실", Congestion: 3, Available: intPtr(35), Capacity: intPtr(80)},
			},
		},
		{
			ID:   "fitness_center",
			Name: "체육관 헬스장",
			Type: model.FacilityGym,
			Location: model.Location{
				Lat: 37.5570, Lng: 127.0455, Radius: 50,
				Address:  "한양대학교 체육관 지하 1층",
				Building: "체육관",
			},
			Capacity:       80,
			AvgServiceTime: 0,
			AvgCongestion:  3,
			Corners: []model.Corner{
				{ID: "gym_main", Name: "메인 헬스장", Type: "헬스", Congestion: 3, Available: intPtr(25), Capacity: intPtr(60), OperatingHours: "06:00-22:00"},
				{ID: "gym_cardio", Name: "유산소 존", Type: "유산소", Congestion: 2, Available: intPtr(12), Capacity: intPtr(20)},
			},
		},
	}
}

func intPtr(v int) *int { return &v }
